// Package navigator drives a client-rendered schedule page through its
// season, division and team selection controls.
//
// The Engine is a small state machine over a single Page. Every wait it
// performs is bounded: mount detection, control discovery, the fingerprint
// poll after a selection and the network-idle wait that follows it.
// Control lookups walk an ordered locator table so that markup drift on the
// source site is handled by editing data rather than control flow.
package navigator
