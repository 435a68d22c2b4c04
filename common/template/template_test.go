package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var knownTime = time.Date(2024, time.March, 7, 9, 5, 3, 0, time.Local)

func TestSubstitute(t *testing.T) {
	a := assert.New(t)
	vars := Vars{Now: knownTime, Width: 640, Height: 480, BatchNumber: 3}

	tests := []struct {
		name     string
		input    string
		table    Table
		expected string
	}{
		{name: "No tokens", input: "ComfyUI", table: PrefixTokens, expected: "ComfyUI"},
		{name: "Date in prefix", input: "img_%date:yyyy-MM-dd%", table: PrefixTokens, expected: "img_2024-03-07"},
		{name: "Time in prefix", input: "%time:HH-mm-ss%_img", table: PrefixTokens, expected: "09-05-03_img"},
		{name: "Date and time", input: "%date:yyyy-MM-dd%/%time:HH-mm-ss%", table: PrefixTokens, expected: "2024-03-07/09-05-03"},
		{name: "Repeated token", input: "%date:yyyy-MM-dd%_%date:yyyy-MM-dd%", table: PrefixTokens, expected: "2024-03-07_2024-03-07"},
		{name: "Time is not substituted in subdirectory", input: "out_%date:yyyy-MM-dd%_%time:HH-mm-ss%", table: SubdirectoryTokens, expected: "out_2024-03-07_%time:HH-mm-ss%"},
		{name: "Unknown token is kept", input: "img_%date:dd-MM%", table: PrefixTokens, expected: "img_%date:dd-MM%"},
		{name: "Batch number", input: "img_%batch_num%", table: BatchTokens, expected: "img_3"},
		{name: "Path variables", input: "%year%-%month%-%day%_%hour%%minute%%second%_%width%x%height%", table: PathTokens, expected: "2024-03-07_090503_640x480"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a.Equal(test.expected, Substitute(test.input, test.table, vars))
		})
	}
}

func TestSubstitute_ResolvesOnlyPresentTokens(t *testing.T) {
	a := assert.New(t)

	calls := 0
	table := Table{
		{Placeholder: "%a%", Resolve: func(vars Vars) string { calls++; return "A" }},
		{Placeholder: "%b%", Resolve: func(vars Vars) string { calls++; return "B" }},
	}

	a.Equal("A-A", Substitute("%a%-%a%", table, Vars{}))
	a.Equal(1, calls)
}
