package symbols

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangUnknown    Language = "unknown"
)

// LanguageFromPath determines the language from a file extension.
func LanguageFromPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".py", ".pyw":
		return LangPython
	default:
		return LangUnknown
	}
}

// grammar returns the tree-sitter grammar for a language, or nil when the
// language has no parser.
func grammar(lang Language) *sitter.Language {
	switch lang {
	case LangGo:
		return golang.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	case LangPython:
		return python.GetLanguage()
	default:
		return nil
	}
}

// IsSourcePath reports whether the extension belongs to an indexable source
// language. The py-family and C-family rule catalogs dispatch on the same
// boundary.
func IsSourcePath(path string) bool {
	return LanguageFromPath(path) != LangUnknown
}

// functionNodeTypes are node types that qualify as a free function or method
// declaration per language.
func functionNodeTypes(lang Language) map[string]bool {
	switch lang {
	case LangGo:
		return map[string]bool{
			"function_declaration": true,
			"method_declaration":   true,
		}
	case LangJavaScript, LangTypeScript, LangTSX:
		return map[string]bool{
			"function_declaration":           true,
			"generator_function_declaration": true,
			"method_definition":              true,
			"arrow_function":                 true,
		}
	case LangPython:
		return map[string]bool{
			"function_definition": true,
		}
	default:
		return nil
	}
}

// classNodeTypes are node types that qualify as a class-like container.
func classNodeTypes(lang Language) map[string]bool {
	switch lang {
	case LangGo:
		return map[string]bool{"type_declaration": true}
	case LangJavaScript, LangTypeScript, LangTSX:
		return map[string]bool{
			"class_declaration":     true,
			"interface_declaration": true,
		}
	case LangPython:
		return map[string]bool{"class_definition": true}
	default:
		return nil
	}
}
