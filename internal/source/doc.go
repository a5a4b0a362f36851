// Package source turns what a learner submitted (pasted text, a web page URL
// or a bare topic) into the study material lessons are generated from.
package source
