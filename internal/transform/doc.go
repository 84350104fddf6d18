// Package transform standardizes numeric feature columns and one-hot encodes
// a categorical column, learning its parameters from training rows only.
// A fitted transform is persisted as a versioned YAML artifact and can be
// reloaded to repeat the exact transformation on unseen data.
package transform
