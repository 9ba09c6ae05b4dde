//go:build xctl_rbdebug

package tree

// Every mutation re-verifies the whole tree and panics on a violation.
const rbDebugVerify = true
