package cli

import (
	"strings"

	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
)

// invocation is a command line split into global options, the command name,
// its positional arguments, and its keyword options.
type invocation struct {
	version string
	debug   bool
	command string
	args    []string
	kwargs  map[string]string
}

// parseInvocation reads a delegated command line:
//
//	--gitbook <v>, -v <v>, --gitbook=<v>   select the version
//	--debug, -d                            verbose errors
//	--key=value, --key value               keyword option
//	--key                                  keyword option set to "true"
//	--no-key                               keyword option set to "false"
//	-abc                                   a, b and c set to "true"
//	--                                     the rest is positional
//
// The first positional argument is the command name.
func parseInvocation(argv []string) invocation {
	inv := invocation{
		version: versions.Latest,
		kwargs:  make(map[string]string),
	}

	positional := func(arg string) {
		if inv.command == "" {
			inv.command = arg
			return
		}
		inv.args = append(inv.args, arg)
	}
	// next returns the following token when it can serve as a value.
	next := func(i int) (string, bool) {
		if i+1 < len(argv) && !isOption(argv[i+1]) {
			return argv[i+1], true
		}
		return "", false
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			for _, rest := range argv[i+1:] {
				positional(rest)
			}
			return inv

		case arg == "--gitbook" || arg == "-v":
			if v, ok := next(i); ok {
				inv.version = v
				i++
			}

		case strings.HasPrefix(arg, "--gitbook="):
			inv.version = strings.TrimPrefix(arg, "--gitbook=")

		case arg == "--debug" || arg == "-d":
			inv.debug = true

		case strings.HasPrefix(arg, "--no-") && !strings.Contains(arg, "="):
			inv.kwargs[strings.TrimPrefix(arg, "--no-")] = "false"

		case strings.HasPrefix(arg, "--"):
			key, value, ok := strings.Cut(arg[2:], "=")
			if !ok {
				value = "true"
				if v, ok := next(i); ok {
					value = v
					i++
				}
			}
			inv.kwargs[key] = value

		case isOption(arg):
			letters := arg[1:]
			for _, l := range letters[:len(letters)-1] {
				inv.kwargs[string(l)] = "true"
			}
			last := string(letters[len(letters)-1])
			inv.kwargs[last] = "true"
			if v, ok := next(i); ok && len(letters) == 1 {
				inv.kwargs[last] = v
				i++
			}

		default:
			positional(arg)
		}
	}
	return inv
}

// isOption reports whether arg looks like a flag. A lone "-" is positional.
func isOption(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}
