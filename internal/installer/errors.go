package installer

import "fmt"

// InstallError reports a failed install of Spec.
type InstallError struct {
	Spec string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing %s: %v", e.Spec, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// InvalidPathError reports a link target that is missing or not a directory.
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid folder %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid folder %s: not a directory", e.Path)
}

func (e *InvalidPathError) Unwrap() error { return e.Err }
