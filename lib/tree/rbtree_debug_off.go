//go:build !xctl_rbdebug

package tree

const rbDebugVerify = false
