// Package prompt composes the system and user instructions sent to a
// generative model. Composition is a pure function of its inputs: the same
// lesson content, category and exam focus always produce byte-identical
// prompts, and nothing here performs I/O beyond reading embedded templates.
package prompt
