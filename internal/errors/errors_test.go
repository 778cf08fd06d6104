package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestQueryError(t *testing.T) {
	underlying := errors.New("missing closing ]")
	err := NewQueryError("[abc", underlying)

	if err.Type != ErrorTypeQuery {
		t.Errorf("Expected Type to be ErrorTypeQuery, got %v", err.Type)
	}

	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Expected error to match ErrInvalidQuery")
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `invalid query "[abc": missing closing ]`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if errors.Is(err, ErrFileUnreadable) || errors.Is(err, ErrSubtreeUnreadable) {
		t.Errorf("Query errors must not match per-file sentinels")
	}
}

func TestFileError(t *testing.T) {
	err := NewFileError("read", "/docs/a.txt", fs.ErrPermission)

	if err.Type != ErrorTypePermission {
		t.Errorf("Expected Type to be ErrorTypePermission, got %v", err.Type)
	}

	if !errors.Is(err, ErrFileUnreadable) {
		t.Errorf("Expected error to match ErrFileUnreadable")
	}

	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected error to unwrap to fs.ErrPermission")
	}

	expectedMsg := "file read failed for /docs/a.txt: permission denied"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	missing := NewFileError("open", "/docs/b.txt", fs.ErrNotExist)
	if missing.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected Type to be ErrorTypeFileNotFound, got %v", missing.Type)
	}

	other := NewFileError("read", "/docs/c.txt", errors.New("i/o error"))
	if other.Type != ErrorTypeFileRead {
		t.Errorf("Expected Type to be ErrorTypeFileRead, got %v", other.Type)
	}
}

func TestDirError(t *testing.T) {
	err := NewDirError("/docs/private", fs.ErrPermission)

	if !errors.Is(err, ErrSubtreeUnreadable) {
		t.Errorf("Expected error to match ErrSubtreeUnreadable")
	}

	if errors.Is(err, ErrFileUnreadable) {
		t.Errorf("Directory errors must not match ErrFileUnreadable")
	}
}

func TestRangeError(t *testing.T) {
	err := NewRangeError(5, 2, 10)

	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected error to match ErrInvalidRange")
	}

	expectedMsg := "invalid byte range [5:2] for text of length 10"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must not be negative")
	err := NewConfigError("search.context", "-1", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "config error for field search.context (value -1): must not be negative"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2, nil})

	if len(multi.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nils, got %d", len(multi.Errors))
	}

	if !errors.Is(multi, err1) || !errors.Is(multi, err2) {
		t.Errorf("Expected multi-error to contain both errors")
	}

	if NewMultiError(nil).ErrOrNil() != nil {
		t.Errorf("Expected ErrOrNil to return nil for empty multi-error")
	}

	single := NewMultiError([]error{err1})
	if single.Error() != "error 1" {
		t.Errorf("Expected single error message, got %q", single.Error())
	}
}
