package dmabuf

import "testing"

func TestExportSyncFileOnInvalidFDErrors(t *testing.T) {
	_, err := ExportSyncFile(-1, SyncRead)
	if err == nil {
		t.Fatalf("ExportSyncFile(-1, ...) error = nil, want non-nil")
	}
}

func TestImportSyncFileOnInvalidFDErrors(t *testing.T) {
	err := ImportSyncFile(-1, -1, SyncWrite)
	if err == nil {
		t.Fatalf("ImportSyncFile(-1, -1, ...) error = nil, want non-nil")
	}
}

func TestIoctlRejectsUnsupportedArgType(t *testing.T) {
	err := ioctl(0, ioctlExportSyncFile, "not a valid arg")
	if err == nil {
		t.Fatalf("ioctl() with unsupported arg type error = nil, want non-nil")
	}
}

func TestSyncFlagValues(t *testing.T) {
	if SyncRead != 1 {
		t.Fatalf("SyncRead = %d, want 1", SyncRead)
	}
	if SyncWrite != 2 {
		t.Fatalf("SyncWrite = %d, want 2", SyncWrite)
	}
}
