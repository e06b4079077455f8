//go:build windows

// Package recyclebin moves files to the Windows Recycle Bin
package recyclebin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/babarot/organizeimg/internal/trash/core"
	"golang.org/x/sys/windows"
)

const (
	foDelete = 0x0003

	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoConfirmMkdir = 0x0200
	fofNoErrorUI      = 0x0400
	recycleFlags      = fofAllowUndo | fofNoConfirmation | fofNoErrorUI | fofSilent | fofNoConfirmMkdir
)

var (
	shell32              = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW = shell32.NewProc("SHFileOperationW")
)

// shFileOpStruct mirrors SHFILEOPSTRUCTW
type shFileOpStruct struct {
	hwnd                  windows.HWND
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// Bin implements core.Backend with SHFileOperationW
type Bin struct{}

// New returns a Recycle Bin backend
func New() *Bin {
	return &Bin{}
}

// Name implements core.Backend
func (b *Bin) Name() string {
	return "recyclebin"
}

// Put moves the file at path to the Recycle Bin
func (b *Bin) Put(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	// pFrom is a list of NUL terminated names ended by an extra NUL
	from, err := windows.UTF16FromString(abs)
	if err != nil {
		return err
	}
	from = append(from, 0)

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: recycleFlags,
	}

	r1, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if r1 != 0 {
		return fmt.Errorf("SHFileOperationW failed with code 0x%x", r1)
	}
	if op.fAnyOperationsAborted != 0 {
		return core.ErrOperationFailed
	}

	slog.Info("moved to recycle bin", "path", abs)
	return nil
}
