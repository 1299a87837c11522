package parser

import (
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// GrammarLoader owns the compiled tree-sitter grammars and one parser pool
// per enabled language.
type GrammarLoader struct {
	languages map[Language]*sitter.Language
	pools     map[Language]*ParserPool
	registry  map[Language]LanguageSpec
}

func NewGrammarLoader() (*GrammarLoader, error) {
	registry, err := BuildLanguageRegistry(nil)
	if err != nil {
		return nil, err
	}
	return NewGrammarLoaderWithRegistry(registry)
}

func NewGrammarLoaderWithRegistry(registry map[Language]LanguageSpec) (*GrammarLoader, error) {
	if registry == nil {
		var err error
		registry, err = BuildLanguageRegistry(nil)
		if err != nil {
			return nil, err
		}
	}

	gl := &GrammarLoader{
		languages: make(map[Language]*sitter.Language),
		pools:     make(map[Language]*ParserPool),
		registry:  cloneLanguageRegistry(registry),
	}

	for _, lang := range sortedLanguages(gl.registry) {
		if !gl.registry[lang].Enabled {
			continue
		}
		var grammar *sitter.Language
		switch lang {
		case LanguageJavaScript:
			grammar = sitter.NewLanguage(tree_sitter_javascript.Language())
		case LanguageTypeScript:
			grammar = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case LanguageTSX:
			grammar = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q is enabled but runtime grammar loading is not implemented", lang)
		}
		gl.languages[lang] = grammar
		gl.pools[lang] = NewParserPool(grammar)
	}

	return gl, nil
}

func (gl *GrammarLoader) LanguageRegistry() map[Language]LanguageSpec {
	return cloneLanguageRegistry(gl.registry)
}

func (gl *GrammarLoader) pool(lang Language) (*ParserPool, bool) {
	p, ok := gl.pools[lang]
	return p, ok
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
