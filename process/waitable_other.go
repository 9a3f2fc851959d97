//go:build unix && !linux

package process

func waitable(int) bool { return false }
