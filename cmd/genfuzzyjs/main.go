// Command genfuzzyjs regenerates the Dynamic Rewriter Helper's embedded JS
// fuzzy-rule table from internal/fuzzy/rules.yaml, so the offline Go engine
// and the in-browser helper can never drift. Invoked via `go generate ./internal/fuzzy`.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name    string `yaml:"name"`
	Match   string `yaml:"match"`
	Replace string `yaml:"replace"`
}

const jsTemplate = `// Code generated by cmd/genfuzzyjs from internal/fuzzy/rules.yaml. DO NOT EDIT.
//
// Mirrors internal/fuzzy.Engine.Apply: the first rule whose pattern matches
// at the start of the path wins; if none match, the path passes through.

(function (global) {
  "use strict";

  var FUZZY_RULES = [
{{- range .Rules}}
    { name: {{printf "%q" .Name}}, match: new RegExp({{printf "%q" .Match}}), replace: {{printf "%q" .Replace}} },
{{- end}}
  ];

  function applyFuzzyRules(path) {
    for (var i = 0; i < FUZZY_RULES.length; i++) {
      var rule = FUZZY_RULES[i];
      var m = rule.match.exec(path);
      if (m && m.index === 0) {
        return m[0].replace(rule.match, rule.replace);
      }
    }
    return path;
  }

  global.__warc2zim_applyFuzzyRules = applyFuzzyRules;
  global.__warc2zim_fuzzyRules = FUZZY_RULES;
})(typeof self !== "undefined" ? self : this);
`

func main() {
	rulesPath := flag.String("rules", "internal/fuzzy/rules.yaml", "path to the YAML rule table")
	outPath := flag.String("out", "internal/dynhelper/static/fuzzy_rules.js", "output JS file")
	flag.Parse()

	data, err := os.ReadFile(*rulesPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "genfuzzyjs:", err)
		os.Exit(1)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		fmt.Fprintln(os.Stderr, "genfuzzyjs: parse rules:", err)
		os.Exit(1)
	}

	for i := range doc.Rules {
		doc.Rules[i].Replace = strings.NewReplacer("${1}", "$1", "${2}", "$2", "${3}", "$3").Replace(doc.Rules[i].Replace)
	}

	tmpl, err := template.New("js").Parse(jsTemplate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "genfuzzyjs:", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		fmt.Fprintln(os.Stderr, "genfuzzyjs:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "genfuzzyjs:", err)
		os.Exit(1)
	}
}
