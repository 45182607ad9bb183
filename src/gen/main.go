package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Generates the <enum>ToString / <enum>FromString helpers for an enum
// declared in a generate-enum comment block:
//
//	generate-enum waveKind
//
//	waveSine sine
//	waveSquare square
//
//	EOF
//
// go:generate passes the output file name; the matching block is the one
// whose enum name snake-cases to that file.
func main() {
	flag.Parse()
	outFile := flag.Arg(0)
	if outFile == "" {
		panic("output file is not passed")
	}
	log.SetFlags(log.Lshortfile)

	paths, err := filepath.Glob("*.go")
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	for _, path := range paths {
		if strings.HasSuffix(path, ".gen.go") {
			continue
		}
		bytes, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		src := string(bytes)
		name, pairs := findEnum(src, outFile)
		if name == "" {
			continue
		}
		out := render(packageName(path, src), name, pairs)
		if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
			log.Fatalf("error: %v\n", err)
		}
		log.Printf("generated %s from %s\n", outFile, path)
		return
	}
	log.Fatalf("no generate-enum block matches %s\n", outFile)
}

type pair struct {
	ident string
	str   string
}

func findEnum(src string, outFile string) (string, []pair) {
	lines := strings.Split(src, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "generate-enum ") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, "generate-enum "))
		if camelToSnake(name)+".gen.go" != outFile {
			continue
		}
		var pairs []pair
		for j := i + 1; j < len(lines); j++ {
			l := strings.TrimSpace(lines[j])
			if l == "EOF" {
				return name, pairs
			}
			if l == "" {
				continue
			}
			fields := strings.Fields(l)
			if len(fields) != 2 {
				log.Fatalf("bad enum line %q\n", l)
			}
			pairs = append(pairs, pair{ident: fields[0], str: fields[1]})
		}
		log.Fatalf("missing EOF after generate-enum %s\n", name)
	}
	return "", nil
}

func packageName(path string, src string) string {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "package ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "package "))
		}
	}
	log.Fatalf("no package clause in %s\n", path)
	return ""
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func render(pkg string, name string, pairs []pair) string {
	var b strings.Builder
	b.WriteString("// Code generated by gen/main.go; DO NOT EDIT.\n\n")
	b.WriteString("package " + pkg + "\n\n")
	b.WriteString("const (\n")
	for i, p := range pairs {
		if i == 0 {
			b.WriteString("\t" + p.ident + " = iota\n")
		} else {
			b.WriteString("\t" + p.ident + "\n")
		}
	}
	b.WriteString(")\n\n")
	b.WriteString("func " + name + "ToString(v int) string {\n")
	b.WriteString("\tswitch v {\n")
	for _, p := range pairs {
		b.WriteString("\tcase " + p.ident + ":\n")
		b.WriteString("\t\treturn \"" + p.str + "\"\n")
	}
	b.WriteString("\t}\n")
	b.WriteString("\treturn \"\"\n")
	b.WriteString("}\n\n")
	b.WriteString("func " + name + "FromString(s string) int {\n")
	b.WriteString("\tswitch s {\n")
	for _, p := range pairs {
		b.WriteString("\tcase \"" + p.str + "\":\n")
		b.WriteString("\t\treturn " + p.ident + "\n")
	}
	b.WriteString("\t}\n")
	b.WriteString("\treturn -1\n")
	b.WriteString("}\n")
	return b.String()
}
