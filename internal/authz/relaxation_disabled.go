//go:build norelax

package authz

const relaxationCompiled = false
