// Command validate checks the ruleset files in a configs directory
// (default: configs). It checks:
//   - JSON or HCL syntax, including HCL expressions
//   - Required fields and value ranges
//   - That the locale has a narration catalog
//   - That no two files share a ruleset id (classic.json and classic.hcl)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/sky-garden-race/game/config"
	"github.com/wricardo/sky-garden-race/game/narrator"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig parses a single ruleset file and checks what the parser
// does not: the locale catalog.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	rules, err := config.ParseFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if !narrator.Default().HasLocale(rules.Locale) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("locale %q has no narration catalog (have %s)",
			rules.Locale, strings.Join(narrator.Default().Locales(), ", ")))
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ %s: %s", rules.Name, rules.Description),
		fmt.Sprintf("✓ Garden events every %d rounds", rules.EventEvery),
		fmt.Sprintf("✓ Comeback +%d when more than %d tiles behind", rules.ComebackBoost, rules.ComebackGap),
		fmt.Sprintf("✓ Log keeps %d lines, locale %s", rules.LogLimit, rules.Locale),
	)
	return result
}

// findRulesets lists the .json and .hcl files in dir, sorted
func findRulesets(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.hcl"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// duplicateIDs reports ruleset ids claimed by more than one file
func duplicateIDs(files []string) []string {
	byID := make(map[string][]string)
	for _, file := range files {
		base := filepath.Base(file)
		id := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
		byID[id] = append(byID[id], base)
	}

	var problems []string
	for id, names := range byID {
		if len(names) > 1 {
			problems = append(problems, fmt.Sprintf("ruleset id %q is defined by %s", id, strings.Join(names, " and ")))
		}
	}
	sort.Strings(problems)
	return problems
}

// main validates every ruleset in the directory given as the first argument,
// printing a concise report and exiting non-zero if any are invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := findRulesets(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rulesets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	if problems := duplicateIDs(files); len(problems) > 0 {
		allValid = false
		fmt.Printf("\n%s duplicates\n", strings.Repeat("=", 20))
		for _, p := range problems {
			fmt.Println("  ❌ " + p)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rulesets are valid!")
	} else {
		fmt.Println("❌ Some rulesets have errors")
		os.Exit(1)
	}
}
