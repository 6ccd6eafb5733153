//go:build windows

package envpath

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"flutter-bootstrap/internal/logger"
)

const (
	machineKeyPath = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	userKeyPath    = `Environment`
	pathValueName  = "Path"
)

// RegistryStore reads and writes PATH under HKLM / HKCU.
type RegistryStore struct{}

// NewSystemStore returns the registry-backed store.
func NewSystemStore() Store {
	return RegistryStore{}
}

func scopeKey(scope Scope) (registry.Key, string) {
	if scope == Machine {
		return registry.LOCAL_MACHINE, machineKeyPath
	}
	return registry.CURRENT_USER, userKeyPath
}

// Get returns the raw registry value, "" when the value does not exist.
func (RegistryStore) Get(scope Scope) (string, error) {
	root, path := scopeKey(scope)
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open %s environment key: %w", scope, err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(pathValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s PATH: %w", scope, err)
	}
	return value, nil
}

// Set writes value back as REG_EXPAND_SZ so %VAR% references keep working,
// then notifies running programs that the environment changed.
func (RegistryStore) Set(scope Scope, value string) error {
	root, path := scopeKey(scope)
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open %s environment key for writing: %w", scope, err)
	}
	defer key.Close()

	if err := key.SetExpandStringValue(pathValueName, value); err != nil {
		return fmt.Errorf("write %s PATH: %w", scope, err)
	}
	broadcastEnvironmentChange()
	return nil
}

// Expand resolves %VAR% references.
func (RegistryStore) Expand(raw string) (string, error) {
	return registry.ExpandString(raw)
}

var sendMessageTimeout = windows.NewLazySystemDLL("user32.dll").NewProc("SendMessageTimeoutW")

// broadcastEnvironmentChange sends WM_SETTINGCHANGE so newly opened shells pick up PATH.
func broadcastEnvironmentChange() {
	const (
		hwndBroadcast   = 0xFFFF
		wmSettingChange = 0x001A
		smtoAbortIfHung = 0x0002
	)
	env, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}
	ret, _, callErr := sendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		uintptr(5000),
		0,
	)
	if ret == 0 {
		logger.Debug("[DEBUG] WM_SETTINGCHANGE broadcast failed: %v\n", callErr)
	}
}
