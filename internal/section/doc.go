// Package section implements progressive page sections: each section decides
// when to run its data loader from a loading strategy and its visibility,
// renders a typed skeleton meanwhile, and offers a capped manual retry when
// the load fails.
package section
