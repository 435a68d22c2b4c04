// Package template substitutes placeholder tokens in filename and directory
// templates. Each token is a literal placeholder paired with a resolver;
// anything not in the table is left as is.
package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Vars are the values resolvers can use. They are captured once per
// substitution so every token sees the same clock reading.
type Vars struct {
	Now         time.Time
	Width       int
	Height      int
	BatchNumber int
}

type Token struct {
	Placeholder string
	Resolve     func(vars Vars) string
}

type Table []Token

var (
	DateToken = Token{Placeholder: "%date:yyyy-MM-dd%", Resolve: func(vars Vars) string {
		return vars.Now.Format("2006-01-02")
	}}
	TimeToken = Token{Placeholder: "%time:HH-mm-ss%", Resolve: func(vars Vars) string {
		return vars.Now.Format("15-04-05")
	}}
	BatchNumberToken = Token{Placeholder: "%batch_num%", Resolve: func(vars Vars) string {
		return strconv.Itoa(vars.BatchNumber)
	}}
)

// PrefixTokens apply to filename prefixes.
var PrefixTokens = Table{DateToken, TimeToken}

// SubdirectoryTokens apply to subdirectory names. Only the date is supported.
var SubdirectoryTokens = Table{DateToken}

// BatchTokens apply to the resolved filename of each batch entry.
var BatchTokens = Table{BatchNumberToken}

// PathTokens are the variables of the output path numbering convention.
var PathTokens = Table{
	{Placeholder: "%width%", Resolve: func(vars Vars) string { return strconv.Itoa(vars.Width) }},
	{Placeholder: "%height%", Resolve: func(vars Vars) string { return strconv.Itoa(vars.Height) }},
	{Placeholder: "%year%", Resolve: func(vars Vars) string { return strconv.Itoa(vars.Now.Year()) }},
	{Placeholder: "%month%", Resolve: func(vars Vars) string { return twoDigits(int(vars.Now.Month())) }},
	{Placeholder: "%day%", Resolve: func(vars Vars) string { return twoDigits(vars.Now.Day()) }},
	{Placeholder: "%hour%", Resolve: func(vars Vars) string { return twoDigits(vars.Now.Hour()) }},
	{Placeholder: "%minute%", Resolve: func(vars Vars) string { return twoDigits(vars.Now.Minute()) }},
	{Placeholder: "%second%", Resolve: func(vars Vars) string { return twoDigits(vars.Now.Second()) }},
}

func twoDigits(value int) string {
	return fmt.Sprintf("%02d", value)
}

// Substitute replaces every placeholder of the table found in input.
// Only tokens present in input are resolved.
func Substitute(input string, table Table, vars Vars) string {
	var pairs []string
	for _, token := range table {
		if strings.Contains(input, token.Placeholder) {
			pairs = append(pairs, token.Placeholder, token.Resolve(vars))
		}
	}
	if len(pairs) == 0 {
		return input
	}
	return strings.NewReplacer(pairs...).Replace(input)
}
