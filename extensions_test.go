package clearvk

import (
	"testing"
)

// Platform enumerators report names through vk.ToString, which strips the
// cgo terminator; the wanted side may carry one. The intersection must find
// matches across that mix and count only genuinely absent names as missing.
func TestCheckExistingIgnoresNullTerminators(t *testing.T) {
	actual := []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_KHR_swapchain"}

	existing, missing := checkExisting(actual, safeStrings([]string{"VK_KHR_swapchain"}))
	if missing != 0 {
		t.Fatalf("reported %d missing, the swapchain extension is present", missing)
	}
	if len(existing) != 1 || existing[0] != "VK_KHR_swapchain" {
		t.Fatalf("existing = %q, want the plain swapchain name", existing)
	}

	existing, missing = checkExisting(actual, []string{"VK_KHR_surface", "VK_EXT_debug_report"})
	if missing != 1 {
		t.Fatalf("reported %d missing, only the debug extension is absent", missing)
	}
	if len(existing) != 1 || existing[0] != "VK_KHR_surface" {
		t.Fatalf("existing = %q, want the surface name only", existing)
	}
}

func TestCheckExistingSurvivorsFeedCreateInfo(t *testing.T) {
	// The same shape device initialization uses: plain wanted names through
	// the intersection, terminated only for the create info.
	actual := []string{"VK_KHR_surface", "VK_KHR_swapchain"}
	existing, missing := checkExisting(actual, []string{"VK_KHR_surface", "VK_KHR_swapchain"})
	if missing != 0 {
		t.Fatalf("reported %d missing out of a full match", missing)
	}
	for _, name := range safeStrings(existing) {
		if name[len(name)-1] != '\x00' {
			t.Fatalf("create info name %q not null-terminated", name)
		}
	}
}

func TestSafeStringsLeavesInputAlone(t *testing.T) {
	names := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
	terminated := safeStrings(names)

	for i, name := range names {
		if name[len(name)-1] == '\x00' {
			t.Fatalf("input name %d was rewritten to %q", i, name)
		}
		if terminated[i] != name+"\x00" {
			t.Fatalf("terminated name %d is %q", i, terminated[i])
		}
	}
}

func TestSafeString(t *testing.T) {
	if got := safeString(""); got != "\x00" {
		t.Fatalf("empty string became %q", got)
	}
	if got := safeString("main"); got != "main\x00" {
		t.Fatalf("plain string became %q", got)
	}
	if got := safeString("main\x00"); got != "main\x00" {
		t.Fatalf("terminated string became %q", got)
	}
}
