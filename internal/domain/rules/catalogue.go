package rules

import (
	"regexp"
	"strings"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

func contains(subs ...string) func(string) bool {
	return func(line string) bool {
		for _, s := range subs {
			if strings.Contains(line, s) {
				return true
			}
		}
		return false
	}
}

func trimmedPrefix(prefix string) func(string) bool {
	return func(line string) bool {
		return strings.HasPrefix(strings.TrimSpace(line), prefix)
	}
}

var externalCall = contains(".call(", ".send(")

var javascriptRules = []Rule{
	{
		ID:          "no-console",
		Severity:    domain.SeverityLow,
		Title:       "Console Statement",
		Description: "Console statements should be removed in production code",
		Suggestion:  "Remove console.log statements or use a proper logging library",
		Match:       contains("console.log"),
	},
	{
		ID:          "no-var",
		Severity:    domain.SeverityMedium,
		Title:       "Use of var",
		Description: "Use 'let' or 'const' instead of 'var' for better scoping",
		Suggestion:  "Replace 'var' with 'let' or 'const'",
		Match:       trimmedPrefix("var "),
	},
	{
		ID:          "eqeqeq",
		Severity:    domain.SeverityMedium,
		Title:       "Loose Equality",
		Description: "Use strict equality (===) instead of loose equality (==)",
		Suggestion:  "Replace '==' with '===' and '!=' with '!=='",
		Match: func(line string) bool {
			return strings.Contains(line, "==") &&
				!strings.Contains(line, "===") &&
				!strings.Contains(line, "!==")
		},
	},
}

var pythonRules = []Rule{
	{
		ID:          "bare-except",
		Severity:    domain.SeverityHigh,
		Title:       "Bare Except Clause",
		Description: "Catching all exceptions with bare 'except:' can hide errors",
		Suggestion:  "Specify the exception type: except SpecificException:",
		Match:       func(line string) bool { return strings.TrimSpace(line) == "except:" },
	},
	{
		ID:          "no-eval",
		Severity:    domain.SeverityCritical,
		Title:       "Use of eval()",
		Description: "eval() can execute arbitrary code and is a security risk",
		Suggestion:  "Avoid using eval(). Consider safer alternatives like ast.literal_eval()",
		Match:       contains("eval("),
	},
	{
		ID:          "global-variable",
		Severity:    domain.SeverityMedium,
		Title:       "Global Variable Usage",
		Description: "Global variables can make code harder to maintain and test",
		Suggestion:  "Consider using function parameters or class attributes instead",
		Match:       trimmedPrefix("global "),
	},
}

var solidityRules = []Rule{
	{
		ID:          "reentrancy",
		Severity:    domain.SeverityCritical,
		Title:       "Potential Reentrancy Vulnerability",
		Description: "External calls can lead to reentrancy attacks",
		Suggestion:  "Use the checks-effects-interactions pattern or ReentrancyGuard",
		Match:       externalCall,
	},
	{
		ID:          "tx-origin",
		Severity:    domain.SeverityHigh,
		Title:       "tx.origin Usage",
		Description: "Using tx.origin for authorization can be unsafe",
		Suggestion:  "Use msg.sender instead of tx.origin for authentication",
		Match:       contains("tx.origin"),
	},
	{
		ID:          "unchecked-call",
		Severity:    domain.SeverityHigh,
		Title:       "Unchecked External Call",
		Description: "External call return value is not checked",
		Suggestion:  "Check return value of external calls or use transfer() instead of send()",
		Match: func(line string) bool {
			return externalCall(line) && !strings.Contains(line, "require(")
		},
	},
	{
		ID:          "solidity-version",
		Severity:    domain.SeverityMedium,
		Title:       "Outdated Solidity Version",
		Description: "Using an older Solidity version may miss security improvements",
		Suggestion:  "Consider upgrading to Solidity ^0.8.0 for built-in overflow protection",
		Match: func(line string) bool {
			return strings.Contains(line, "pragma solidity") && !strings.Contains(line, "^0.8")
		},
	},
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`password\s*=\s*["']`),
	regexp.MustCompile(`api_key\s*=\s*["']`),
	regexp.MustCompile(`(?i)secret\s*=\s*["']`),
}

// commonRules run for every language, after the language set.
var commonRules = []Rule{
	{
		ID:          "todo-fixme",
		Severity:    domain.SeverityLow,
		Title:       "TODO/FIXME Comment",
		Description: "Code contains TODO or FIXME comment",
		Suggestion:  "Address the TODO/FIXME or create a ticket to track the work",
		Match:       contains("TODO", "FIXME"),
	},
	{
		ID:          "hardcoded-secret",
		Severity:    domain.SeverityCritical,
		Title:       "Hardcoded Secret",
		Description: "Potential hardcoded password or API key found",
		Suggestion:  "Move secrets to environment variables or secure configuration",
		Match: func(line string) bool {
			for _, rx := range secretPatterns {
				if rx.MatchString(line) {
					return true
				}
			}
			return false
		},
	},
}

var languageRules = map[domain.Language][]Rule{
	domain.LanguageJavaScript: javascriptRules,
	domain.LanguagePython:     pythonRules,
	domain.LanguageSolidity:   solidityRules,
}

// ForLanguage returns the language specific rule set; unknown languages get none.
func ForLanguage(lang domain.Language) []Rule {
	return languageRules[lang]
}

// Common returns the language-agnostic rule set.
func Common() []Rule {
	return commonRules
}

// Catalogue lists every rule, language sets in SupportedLanguages order then common rules.
func Catalogue() []Info {
	var out []Info
	for _, lang := range domain.SupportedLanguages() {
		for _, r := range languageRules[lang] {
			out = append(out, r.info(lang))
		}
	}
	for _, r := range commonRules {
		out = append(out, r.info(""))
	}
	return out
}

func (r Rule) info(lang domain.Language) Info {
	return Info{
		ID:          r.ID,
		Language:    lang,
		Severity:    r.Severity,
		Title:       r.Title,
		Description: r.Description,
		Suggestion:  r.Suggestion,
	}
}
