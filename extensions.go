package clearvk

import (
	"log"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of device extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// checkExisting intersects the wanted names with the actual ones, warning
// about each wanted entry the platform does not provide. Names may arrive
// with or without a cgo null terminator (vk.ToString strips it, safeString
// appends it); the comparison ignores it and the survivors come back plain.
// Terminate them with safeStrings only when building a create info.
func checkExisting(actual, wanted []string) (existing []string, missing int) {
	for _, want := range wanted {
		name := strings.TrimSuffix(want, "\x00")
		found := false
		for _, have := range actual {
			if strings.TrimSuffix(have, "\x00") == name {
				found = true
				break
			}
		}
		if found {
			existing = append(existing, name)
		} else {
			missing++
			log.Printf("vulkan warning: missing %s", name)
		}
	}
	return existing, missing
}

// safeString null-terminates a string for passing over cgo.
func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

// safeStrings null-terminates every name into a fresh slice, leaving the
// caller's strings untouched.
func safeStrings(list []string) []string {
	terminated := make([]string, len(list))
	for i := range list {
		terminated[i] = safeString(list[i])
	}
	return terminated
}
