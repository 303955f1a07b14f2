package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"codec error", "E060", "Invalid BlazorPack batch", CategoryCodec},
		{"config error", "E120", "Invalid btp.json", CategoryConfig},
		{"cli error", "E141", "No btp.json found", CategoryCLI},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "capture.bin")
	if err.Message != `file "capture.bin" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" || err.Error() != err.Message {
		t.Errorf("Error() = %q, want bare message", err.Error())
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := New("E060").Wrap(cause)

	if got, want := err.Error(), "E060: Invalid BlazorPack batch: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is did not find wrapped cause")
	}
	var be *BTPError
	if !stderrors.As(error(err), &be) || be.Code != "E060" {
		t.Error("errors.As did not find BTPError")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E060") != nil {
		t.Error("FromError(nil) should be nil")
	}
	orig := New("E141")
	if FromError(orig, "E060") != orig {
		t.Error("FromError should return an existing BTPError unchanged")
	}
	wrapped := FromError(stderrors.New("boom"), "E140")
	if wrapped.Code != "E140" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E060").
		WithInput("capture.bin", 412).
		WithSuggestion("Check that the file holds a whole batch").
		Wrap(stderrors.New("blazorpack: incomplete message"))
	out := err.Format()

	for _, want := range []string{
		"ERROR E060: Invalid BlazorPack batch",
		"capture.bin @ byte 412",
		"length-prefixed MessagePack frames",
		"Cause: blazorpack: incomplete message",
		"Hint: Check that the file holds a whole batch",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E120").WithInput("btp.json", -1)
	if got, want := err.FormatCompact(), "btp.json: E120: Invalid btp.json"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E060").WithInput("in.bin", 3).Wrap(stderrors.New("bad"))
	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not JSON: %v", jerr)
	}
	if got["code"] != "E060" || got["category"] != "codec" || got["cause"] != "bad" {
		t.Errorf("FormatJSON = %v", got)
	}
	if got["offset"] != float64(3) {
		t.Errorf("offset = %v, want 3", got["offset"])
	}

	noOffset := New("E140").WithInput("-", -1)
	if strings.Contains(noOffset.FormatJSON(), "offset") {
		t.Error("FormatJSON included unknown offset")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("E141"))
	if !strings.Contains(buf.String(), "ERROR E141") {
		t.Errorf("Fprint(BTPError) = %q", buf.String())
	}
	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint(error) = %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}
	Register("E900", ErrorTemplate{Category: CategoryCLI, Message: "Test"})
	defer delete(registry, "E900")
	if New("E900").Message != "Test" {
		t.Error("Register did not add template")
	}
}
