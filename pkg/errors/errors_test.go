package errors

import (
	"errors"
	"testing"
)

func TestIngestError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeInvalidFormat,
			message:    "invalid format",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "mapping error",
			category:   CategoryMapping,
			code:       CodeInvalidMapping,
			message:    "mapping invalid",
			cause:      nil,
			expectCode: 4,
		},
		{
			name:       "allocation error",
			category:   CategoryAllocation,
			code:       CodeAllocationMismatch,
			message:    "amounts do not sum",
			cause:      errors.New("off by one"),
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *IngestError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
		})
	}
}

func TestIngestErrorWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "/path/to/file").
		WithContext("line", 42).
		WithSuggestion("check file path")

	if err.Context["file"] != "/path/to/file" {
		t.Errorf("expected file context '/path/to/file', got %v", err.Context["file"])
	}
	if err.Context["line"] != 42 {
		t.Errorf("expected line context 42, got %v", err.Context["line"])
	}
	if err.Suggestion != "check file path" {
		t.Errorf("expected suggestion 'check file path', got %s", err.Suggestion)
	}

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected error string '%s', got '%s'", expected, err.Error())
	}
}

func TestSpecificErrorConstructors(t *testing.T) {
	t.Run("FileError", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := FileError(CodeFilePermission, "/test/statement.csv", cause)

		if err.Category != CategoryFile {
			t.Errorf("expected file category, got %s", err.Category)
		}
		if err.Code != CodeFilePermission {
			t.Errorf("expected permission code, got %s", err.Code)
		}
		if err.Context["file_path"] != "/test/statement.csv" {
			t.Errorf("expected file_path context, got %v", err.Context["file_path"])
		}
		if err.Suggestion == "" {
			t.Error("expected suggestion to be set")
		}
		if err.Cause != cause {
			t.Errorf("expected cause to be %v, got %v", cause, err.Cause)
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		err := ParseError(CodeInvalidFormat, "test.csv", 10, "ragged record", nil)

		if err.Category != CategoryParse {
			t.Errorf("expected parse category, got %s", err.Category)
		}
		if err.Context["file"] != "test.csv" {
			t.Errorf("expected file context, got %v", err.Context["file"])
		}
		if err.Context["line"] != 10 {
			t.Errorf("expected line context, got %v", err.Context["line"])
		}
	})

	t.Run("MappingError", func(t *testing.T) {
		err := MappingError(CodeInvalidMapping, "missing [date amount]", nil)

		if err.Category != CategoryMapping {
			t.Errorf("expected mapping category, got %s", err.Category)
		}
		if err.Suggestion == "" {
			t.Error("expected suggestion to be set")
		}
	})

	t.Run("AllocationError", func(t *testing.T) {
		err := AllocationError(CodeEmptyGroup, "equal split", nil)

		if err.Category != CategoryAllocation {
			t.Errorf("expected allocation category, got %s", err.Category)
		}
		if err.Code != CodeEmptyGroup {
			t.Errorf("expected empty_group code, got %s", err.Code)
		}
	})

	t.Run("ConfigurationError", func(t *testing.T) {
		err := ConfigurationError(CodeInvalidConfig, "delimiter", "", nil)

		if err.Category != CategoryConfiguration {
			t.Errorf("expected configuration category, got %s", err.Category)
		}
		if err.Context["setting"] != "delimiter" {
			t.Errorf("expected setting context, got %v", err.Context["setting"])
		}
	})
}

func TestIsIngestError(t *testing.T) {
	ingestErr := New(CategoryFile, CodeFileNotFound, "test")
	genericErr := errors.New("generic error")

	if !IsIngestError(ingestErr) {
		t.Error("expected IsIngestError to return true for IngestError")
	}
	if IsIngestError(genericErr) {
		t.Error("expected IsIngestError to return false for generic error")
	}
	if IsIngestError(nil) {
		t.Error("expected IsIngestError to return false for nil")
	}
}

func TestAsIngestError(t *testing.T) {
	ingestErr := New(CategoryFile, CodeFileNotFound, "test")
	genericErr := errors.New("generic error")

	if extracted, ok := AsIngestError(ingestErr); !ok || extracted != ingestErr {
		t.Error("expected AsIngestError to extract IngestError")
	}
	if _, ok := AsIngestError(genericErr); ok {
		t.Error("expected AsIngestError to return false for generic error")
	}
	if _, ok := AsIngestError(nil); ok {
		t.Error("expected AsIngestError to return false for nil")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	ingestErr := New(CategoryFile, CodeFileNotFound, "test")
	genericErr := errors.New("generic error")

	result1 := WrapIfNeeded(ingestErr, CategoryParse, CodeInvalidFormat, "wrapped")
	if result1 != ingestErr {
		t.Error("expected WrapIfNeeded to return original IngestError")
	}

	result2 := WrapIfNeeded(genericErr, CategoryParse, CodeInvalidFormat, "wrapped")
	if result2.Cause != genericErr {
		t.Error("expected WrapIfNeeded to wrap generic error")
	}
	if result2.Category != CategoryParse {
		t.Error("expected wrapped error to have correct category")
	}

	result3 := WrapIfNeeded(nil, CategoryParse, CodeInvalidFormat, "wrapped")
	if result3 != nil {
		t.Error("expected WrapIfNeeded to return nil for nil input")
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category     ErrorCategory
		expectedCode int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryMapping, 4},
		{CategoryConfiguration, 4},
		{CategoryAllocation, 5},
		{CategoryInternal, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := New(tt.category, "test_code", "test message")
			if err.GetExitCode() != tt.expectedCode {
				t.Errorf("expected exit code %d for category %s, got %d",
					tt.expectedCode, tt.category, err.GetExitCode())
			}
		})
	}
}

func TestFormatCategories(t *testing.T) {
	if got := FormatCategories(nil); got != "no errors" {
		t.Errorf("expected 'no errors', got %q", got)
	}

	got := FormatCategories(map[ErrorCategory]int{CategoryParse: 3})
	if got != "parse: 3" {
		t.Errorf("expected 'parse: 3', got %q", got)
	}
}
