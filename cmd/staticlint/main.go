// Package main реализует multichecker для статического анализа кода проекта.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
//
// Состав:
//
//   - printf, shadow, structtag, unusedresult из golang.org/x/tools/go/analysis/passes
//   - все анализаторы класса SA из staticcheck.io
//   - nodefaulthttp, собственный анализатор
//
// # Собственный анализатор nodefaulthttp
//
// Все исходящие HTTP запросы клиента идут через настроенный req клиент:
// у него таймаут, User-Agent и X-Request-ID. Анализатор запрещает в
// рабочем коде http.Get, http.Post, http.Head, http.PostForm и
// http.DefaultClient, которые всего этого лишены. Файлы _test.go не проверяются.
package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/staticcheck"
)

var noDefaultHTTPAnalyzer = &analysis.Analyzer{
	Name: "nodefaulthttp",
	Doc:  "запрещает http.Get, http.Post, http.Head, http.PostForm и http.DefaultClient вне тестов",
	Run:  runNoDefaultHTTP,
}

var forbidden = map[string]bool{
	"Get":           true,
	"Post":          true,
	"Head":          true,
	"PostForm":      true,
	"DefaultClient": true,
}

func runNoDefaultHTTP(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		name := pass.Fset.Position(file.Pos()).Filename
		if strings.HasSuffix(name, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || !forbidden[sel.Sel.Name] {
				return true
			}

			obj := pass.TypesInfo.Uses[sel.Sel]
			if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
				return true
			}
			// методы http.Client с теми же именами не трогаем
			if fn, ok := obj.(*types.Func); ok && fn.Type().(*types.Signature).Recv() != nil {
				return true
			}

			pass.Reportf(sel.Pos(), "http.%s без таймаута и X-Request-ID, используйте клиент из internal/gateway", sel.Sel.Name)
			return true
		})
	}
	return nil, nil
}

func main() {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,

		noDefaultHTTPAnalyzer,
	}

	for _, v := range staticcheck.Analyzers {
		checks = append(checks, v.Analyzer)
	}

	multichecker.Main(checks...)
}
