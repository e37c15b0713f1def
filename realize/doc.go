// Package realize builds plans on the local machine into a directory store.
// It is meant for development and tests of writers. There is no sandbox and
// plans are realized one after the other.
package realize
