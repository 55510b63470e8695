package analyses

import (
	"path/filepath"
	"strings"
)

// uploadExtensions is the allow-list for uploaded files.
var uploadExtensions = map[string]bool{
	".js":  true,
	".py":  true,
	".sol": true,
	".txt": true,
	".ts":  true,
	".jsx": true,
	".tsx": true,
}

// AllowedUpload reports whether an uploaded filename has an accepted extension.
func AllowedUpload(filename string) bool {
	return uploadExtensions[strings.ToLower(filepath.Ext(filename))]
}

// DetectLanguage derives the language from a filename extension.
// Anything that is not Python or Solidity is treated as JavaScript. The
// extension is matched case-insensitively, like the upload allow-list.
func DetectLanguage(filename string) Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".py":
		return LanguagePython
	case ".sol":
		return LanguageSolidity
	default:
		return LanguageJavaScript
	}
}
