package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for the document argument, empty if none
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"slice-mode": {Values: []string{"offset", "crop"}},
	"log-format": {Values: []string{"text", "json"}},
	"surface":    {Values: []string{surfaceDOM, surfaceBrowser}},

	"config":    {FileGlob: "*.yaml,*.yml"},
	"env-file":  {FileGlob: "*.env,.env"},
	"signature": {FileGlob: "*.png,*.jpg,*.jpeg"},

	"asset-path": {IsDir: true},
}

// documentGlob matches the documents the loader accepts.
const documentGlob = "*.html,*.htm,*.md,*.markdown"

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64", "float64", "duration":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "sanitize",
			Desc:        "Print the sanitized HTML of a document",
			Flags:       extractFlagsFromFlagSet(buildSanitizeFlagSet(&sanitizeFlags{})),
			FilePattern: documentGlob,
		},
		{
			Name:        "export",
			Desc:        "Export a document to PDF or Markdown",
			Flags:       extractFlagsFromFlagSet(buildExportFlagSet(&exportFlags{})),
			FilePattern: documentGlob,
		},
		{
			Name:  "serve",
			Desc:  "Start the HTTP editing server",
			Flags: extractFlagsFromFlagSet(buildServeFlagSet(&serveFlags{})),
		},
		{
			Name:  "doctor",
			Desc:  "Check system configuration",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output JSON"}},
		},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// commandNames returns the command names in registry order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// longFlags returns the --long spellings of flags.
func longFlags(flags []flagDef) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, "--"+f.Long)
	}
	sort.Strings(out)
	return out
}

// globExtensions turns "*.png,*.jpg" into "png|jpg" style pieces.
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	return exts
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for doceditor\n\n")
	b.WriteString("_doceditor_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n    fi\n\n")

	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if seen[f.Long] {
				continue
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", f.Long, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", f.Long)
			case flagDir:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", f.Long)
			default:
				continue
			}
			seen[f.Long] = true
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 && c.Name != "completion" && c.Name != "help" {
			continue
		}
		words := longFlags(c.Flags)
		switch c.Name {
		case "completion":
			words = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}
		case "help":
			words = commandNames(cmds)
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
		if c.FilePattern != "" {
			b.WriteString("            [[ \"$cur\" != -* ]] && COMPREPLY+=($(compgen -f -- \"$cur\"))\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n}\n\n")
	b.WriteString("complete -F _doceditor_completions doceditor\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef doceditor\n\n")
	b.WriteString("_doceditor() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"$words[2]\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		specs := make([]string, 0, len(c.Flags)+1)
		for _, f := range c.Flags {
			specs = append(specs, fmt.Sprintf("'--%s[%s]%s'", f.Long, zshEscape(f.Desc), zshAction(f)))
		}
		if c.FilePattern != "" {
			specs = append(specs, fmt.Sprintf("'*:document:_files -g \"%s\"'", zshGlob(c.FilePattern)))
		}
		b.WriteString("            _arguments \\\n                ")
		b.WriteString(strings.Join(specs, " \\\n                "))
		b.WriteString("\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("        completion)\n")
	b.WriteString("            _values 'shell' bash zsh fish powershell\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n}\n\n")
	b.WriteString("_doceditor \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshAction returns the _arguments action suffix for f.
func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		return ":" + f.Long + ":_files -g \"" + zshGlob(f.FileGlob) + "\""
	case flagDir:
		return ":" + f.Long + ":_directories"
	default:
		return ":" + f.Long + ":"
	}
}

// zshGlob turns "*.png,*.jpg" into "*.(png|jpg)".
func zshGlob(glob string) string {
	return "*.(" + strings.Join(globExtensions(glob), "|") + ")"
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for doceditor\n\n")
	b.WriteString("function __fish_doceditor_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_doceditor_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $argv[1] = $cmd[2]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c doceditor -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c doceditor -n __fish_doceditor_needs_command -a %s -d %q\n", c.Name, c.Desc)
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := "'__fish_doceditor_using_command " + c.Name + "'"
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c doceditor -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += fmt.Sprintf(" -x -a %q", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagString, flagNumber:
				line += " -x"
			}
			line += fmt.Sprintf(" -d %q\n", f.Desc)
			b.WriteString(line)
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c doceditor -n %s -F\n", cond)
		}
	}
	b.WriteString("complete -c doceditor -n '__fish_doceditor_using_command completion' -a 'bash zsh fish powershell'\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# PowerShell completion for doceditor\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName doceditor -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s' = @(", c.Name)
		quoted := make([]string, 0, len(c.Flags))
		for _, f := range longFlags(c.Flags) {
			quoted = append(quoted, "'"+f+"'")
		}
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString(")\n")
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements.Count -le 2 -and -not $wordToComplete.StartsWith('-')) {\n")
	quotedCmds := make([]string, 0, len(cmds))
	for _, n := range commandNames(cmds) {
		quotedCmds = append(quotedCmds, "'"+n+"'")
	}
	fmt.Fprintf(&b, "        $candidates = @(%s)\n", strings.Join(quotedCmds, ", "))
	b.WriteString("    } else {\n")
	b.WriteString("        $candidates = $flags[$elements[1]]\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doceditor completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:        eval \"$(doceditor completion bash)\"")
	fmt.Fprintln(w, "  Zsh:         eval \"$(doceditor completion zsh)\"")
	fmt.Fprintln(w, "  Fish:        doceditor completion fish > ~/.config/fish/completions/doceditor.fish")
	fmt.Fprintln(w, "  PowerShell:  doceditor completion powershell | Out-String | Invoke-Expression")
}
