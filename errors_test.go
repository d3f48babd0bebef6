package clearvk

import (
	"errors"
	"strings"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestNewErrorSuccessIsNil(t *testing.T) {
	if err := NewError(vk.Success); err != nil {
		t.Fatalf("NewError(Success) = %v, want nil", err)
	}
}

func TestNewErrorCarriesCode(t *testing.T) {
	err := NewError(vk.ErrorDeviceLost)
	var perr *PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("NewError returned %T, want *PlatformError", err)
	}
	if perr.Code() != vk.ErrorDeviceLost {
		t.Fatalf("Code() = %d, want %d", perr.Code(), vk.ErrorDeviceLost)
	}
}

func TestNewErrorMentionsCallSite(t *testing.T) {
	err := NewError(vk.ErrorOutOfDeviceMemory)
	if !strings.Contains(err.Error(), "errors_test.go") {
		t.Fatalf("error %q does not name the failing call site", err.Error())
	}
}

func TestIsError(t *testing.T) {
	if isError(vk.Success) {
		t.Fatal("isError(Success) = true")
	}
	if !isError(vk.ErrorInitializationFailed) {
		t.Fatal("isError(ErrorInitializationFailed) = false")
	}
}
