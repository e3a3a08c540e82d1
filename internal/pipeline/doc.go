// Package pipeline implements the per-image stages of an embedding run:
// classifying an image reference as inline or external (Resolver) and
// turning it into a finished, base64-encoded mail part (Transformer).
// External tools are reached through narrow collaborator interfaces so
// tests can substitute deterministic fakes.
package pipeline
