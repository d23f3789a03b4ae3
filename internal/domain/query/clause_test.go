package query

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		c    Clause
		want string
	}{
		{"all", All(), "*"},
		{"empty and", And(), "*"},
		{"match", Match("parent", "abc"), "@parent:{abc}"},
		{"match escapes", Match("parent", "a-b c"), `@parent:{a\-b\ c}`},
		{"match many", Match("id", "a", "b"), "@id:{a | b}"},
		{"prefix", Prefix("mimetype", "image/"), `@mimetype:{image\/*}`},
		{"range", Between("modified", 10, 20), "@modified:[10 20]"},
		{"text", Text([]string{"name", "title"}, "q3 report-v2"), `@name|title:(q3 report\-v2)`},
		{"raw", Raw("@type:{cm\\:content}"), "(@type:{cm\\:content})"},
		{
			"and",
			And(Match("ancestors", "r"), Not(Match("type", "cm:folder"))),
			`@ancestors:{r} -@type:{cm\:folder}`,
		},
		{"and drops all", And(All(), Match("id", "x")), "@id:{x}"},
		{
			"or",
			Or(Match("type", "a"), Match("type", "b")),
			"(@type:{a} | @type:{b})",
		},
		{
			"nested and",
			And(Match("a", "1"), Or(And(Match("b", "2"), Match("c", "3")), Match("d", "4"))),
			"@a:{1} ((@b:{2} @c:{3}) | @d:{4})",
		},
		{
			"not compound",
			Not(And(Match("a", "1"), Match("b", "2"))),
			"-(@a:{1} @b:{2})",
		},
		{"not or", Not(Or(Match("a", "1"), Match("a", "2"))), "-(@a:{1} | @a:{2})"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.c); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := []Clause{
		All(),
		And(Match("a", "1"), Between("m", 1, 1)),
		Text([]string{"name"}, "x"),
		Raw(`(@a:{1} | @b:[1 2]) -@type:{cm\:folder}`),
		Raw(`@name:"a) b" @x:{\(}`),
	}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%s) = %v", c, err)
		}
	}

	invalid := map[string]Clause{
		"empty field":   Match("", "x"),
		"no values":     Match("tags"),
		"empty value":   And(Match("tags", "")),
		"bad range":     Between("m", 5, 1),
		"empty text":    Text([]string{"name"}, "  "),
		"no text field": Text(nil, "x"),
		"empty or":      Or(),
		"empty raw":     Raw(""),
		"nested":        Not(Match("a", "")),
		"raw breakout":  Raw(`@id:{none}) | (@type:{cm\:content}`),
		"raw unclosed":  Raw("(@a:{1}"),
		"raw crossed":   Raw("(@a:{1)}"),
		"raw quote":     Raw(`@name:"draft`),
	}
	for name, c := range invalid {
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDescriptor(t *testing.T) {
	d := Descriptor{Query: Match("id", "x"), Sort: []SortField{{Field: "cm:name", Ascending: true}}}
	if d.QueryString() != "@id:{x}" {
		t.Errorf("QueryString() = %q", d.QueryString())
	}
	if !d.SortsBy("cm:name") || d.SortsBy("cm:modified") {
		t.Error("SortsBy mismatch")
	}
	if (Descriptor{}).SortsBy("cm:name") {
		t.Error("empty sort should not sort by name")
	}
	if !LanguageFullText.IsValid() || Language("lucene").IsValid() {
		t.Error("IsValid mismatch")
	}
}
