package clearvk

import (
	"fmt"
	"log"
	"os"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// PlatformError is a failed call into the Vulkan platform API. It carries the
// native result code so callers can format it for diagnostics. The core never
// recovers from one of these; every failure propagates to the entry point.
type PlatformError struct {
	ret  vk.Result
	call string
}

func (e *PlatformError) Error() string {
	if e.call == "" {
		return fmt.Sprintf("vulkan error: %s (%d)", vk.Error(e.ret).Error(), e.ret)
	}
	return fmt.Sprintf("vulkan error: %s (%d) on %s", vk.Error(e.ret).Error(), e.ret, e.call)
}

// Code returns the native vk.Result carried by the error.
func (e *PlatformError) Code() vk.Result {
	return e.ret
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError wraps a vk.Result into a *PlatformError, or nil on vk.Success.
// The failing call site is captured for the error string.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		return &PlatformError{ret: ret}
	}
	return &PlatformError{ret: ret, call: callSite(pc, file, line)}
}

func callSite(pc uintptr, file string, line int) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return fmt.Sprintf("%s (%s:%d)", fn.Name(), file, line)
}

// Fatal runs the finalizers and terminates the process, appending the failure
// to fatal_log.txt. For entry-point glue only; the core returns its errors.
func Fatal(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}

		file, ferr := os.OpenFile("fatal_log.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if ferr != nil {
			log.Fatal(err)
		}
		fatal_log := log.New(file, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile)
		fatal_log.Fatal(err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
