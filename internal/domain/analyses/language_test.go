package analyses

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"app.py":       LanguagePython,
		"b.PY":         LanguagePython,
		"Vault.Sol":    LanguageSolidity,
		"Token.sol":    LanguageSolidity,
		"index.js":     LanguageJavaScript,
		"view.tsx":     LanguageJavaScript,
		"types.ts":     LanguageJavaScript,
		"notes.txt":    LanguageJavaScript,
		"noextension":  LanguageJavaScript,
		"script.py.js": LanguageJavaScript,
	}
	for name, want := range cases {
		if got := DetectLanguage(name); got != want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestAllowedUpload(t *testing.T) {
	for _, name := range []string{"a.js", "b.PY", "c.sol", "d.txt", "e.ts", "f.jsx", "g.TSX"} {
		if !AllowedUpload(name) {
			t.Errorf("AllowedUpload(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.exe", "b.go", "c", "d.js.zip", ".bashrc"} {
		if AllowedUpload(name) {
			t.Errorf("AllowedUpload(%q) = true, want false", name)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	if l, ok := ParseLanguage("solidity"); !ok || l != LanguageSolidity {
		t.Fatalf("ParseLanguage(solidity) = %q, %v", l, ok)
	}
	if _, ok := ParseLanguage("ruby"); ok {
		t.Fatal("ParseLanguage(ruby) should fail")
	}
	if _, ok := ParseLanguage("JavaScript"); ok {
		t.Fatal("ParseLanguage is case sensitive")
	}
	if got := SupportedLanguages(); len(got) != 3 || got[0] != LanguageJavaScript || got[2] != LanguageSolidity {
		t.Fatalf("SupportedLanguages() = %v", got)
	}
}

func TestPatchApply(t *testing.T) {
	base := Analysis{ID: "x", Status: StatusPending, Filename: "a.js"}
	st := StatusCompleted
	d := int64(12)
	res := Result{Summary: Summary{Total: 0}, LinesOfCode: 3}
	got := Patch{Status: &st, Results: &res, Duration: &d}.Apply(base)
	if got.Status != StatusCompleted || got.Results == nil || *got.Duration != 12 || got.Filename != "a.js" {
		t.Fatalf("Apply = %+v", got)
	}
	if base.Status != StatusPending || base.Results != nil {
		t.Fatal("Apply must not mutate the receiver's input")
	}
}

func TestPatchCheck(t *testing.T) {
	completed, failed := StatusCompleted, StatusFailed
	res := Result{}
	d := int64(1)
	reason := ReasonScanFault
	url := "http://reports/x.json"

	tests := []struct {
		name    string
		current Status
		patch   Patch
		want    error
	}{
		{"complete pending", StatusPending, Patch{Status: &completed, Results: &res, Duration: &d}, nil},
		{"fail pending", StatusPending, Patch{Status: &failed, FailureReason: &reason}, nil},
		{"complete without results", StatusPending, Patch{Status: &completed}, ErrInvalidPatch},
		{"results without status", StatusPending, Patch{Results: &res}, ErrInvalidPatch},
		{"results while failing", StatusPending, Patch{Status: &failed, Results: &res}, ErrInvalidPatch},
		{"reason while completing", StatusPending, Patch{Status: &completed, Results: &res, FailureReason: &reason}, ErrInvalidPatch},
		{"results on failed", StatusFailed, Patch{Results: &res}, ErrTerminal},
		{"duration on completed", StatusCompleted, Patch{Duration: &d}, ErrTerminal},
		{"report url on completed", StatusCompleted, Patch{ReportURL: &url}, nil},
	}
	for _, tt := range tests {
		if err := tt.patch.Check(tt.current); err != tt.want {
			t.Errorf("%s: Check = %v, want %v", tt.name, err, tt.want)
		}
	}
}
