//go:build !amd64 && !arm64

package wxprobe

import "reflect"

//go:noinline
func targetRoutine() int {
	return constantA
}

func targetRoutineAddr() uintptr {
	return reflect.ValueOf(targetRoutine).Pointer()
}
