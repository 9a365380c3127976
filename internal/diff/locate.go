package diff

import (
	"regexp"
	"strings"
)

// containsToken reports whether name occurs in s as a whole identifier
// token: the characters on either side of the match must fall outside
// [A-Za-z0-9_], so "free" never matches inside "kfree".
func containsToken(s, name string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], name)
		if i < 0 {
			return false
		}
		i += from
		before := i == 0 || !identByte(s[i-1])
		afterIdx := i + len(name)
		after := afterIdx >= len(s) || !identByte(s[afterIdx])
		if before && after {
			return true
		}
		from = i + 1
	}
}

func identByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// headerContext returns the function-context annotation a diff tool appends
// after the second "@@" of a hunk header, or "".
func headerContext(header string) string {
	i := strings.Index(header, "@@")
	if i < 0 {
		return ""
	}
	rest := header[i+2:]
	j := strings.Index(rest, "@@")
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(rest[j+2:])
}

// cKeywords are identifiers that can precede a paren in C code without
// naming a function.
var cKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "return": true,
	"break": true, "continue": true, "goto": true, "sizeof": true,
	"typeof": true, "int": true, "char": true, "float": true,
	"double": true, "void": true, "long": true, "short": true,
	"signed": true, "unsigned": true, "const": true, "static": true,
	"extern": true, "inline": true, "struct": true, "union": true,
	"enum": true, "typedef": true, "auto": true, "register": true,
	"volatile": true, "bool": true,
}

var (
	syscallDefineRe = regexp.MustCompile(`SYSCALL_DEFINE\d+\((\w+)`)
	macroDefineRe   = regexp.MustCompile(`DEFINE_\w+\((\w+)`)
	structContextRe = regexp.MustCompile(`^struct\s+(\w+)`)
	callSiteRe      = regexp.MustCompile(`(\w+)\s*\(`)
)

// functionFromContext extracts a function name from a hunk header's
// context annotation. Kernel diffs annotate hunks with the enclosing
// definition, so the identifier immediately before a paren is the usual
// case, with SYSCALL_DEFINEn and DEFINE_* macro forms handled explicitly.
func functionFromContext(context string) string {
	if context == "" {
		return ""
	}

	if match := syscallDefineRe.FindStringSubmatch(context); match != nil {
		return match[1]
	}
	if match := macroDefineRe.FindStringSubmatch(context); match != nil {
		return match[1]
	}

	// Last identifier before a paren that is not a C keyword; leading *
	// from pointer return types has already been split off by \w matching.
	// A "struct foo *func(void)" context must resolve to func, so the
	// bare-struct form is only consulted when no call shape exists.
	var name string
	for _, match := range callSiteRe.FindAllStringSubmatch(context, -1) {
		candidate := strings.TrimPrefix(match[1], "*")
		if candidate == "" || cKeywords[candidate] {
			continue
		}
		name = candidate
	}
	if name != "" {
		return name
	}

	if match := structContextRe.FindStringSubmatch(context); match != nil {
		return match[1]
	}
	return ""
}
