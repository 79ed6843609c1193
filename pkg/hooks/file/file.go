// Package file provides a file-based hook implementation. A directory is specified, whose
// files will be executed for specific hook events. When the post-create event is emitted,
// the file called post-create will be executed, similar to Git hooks. If such a file does not
// exist, the event will be ignored.
// Information about the current session and HTTP request is provided on stdin and in the
// environment variables.
package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/FHNW/plone.restapi/pkg/hooks"
)

type FileHook struct {
	Directory string
}

func (FileHook) Setup() error {
	return nil
}

func (h FileHook) InvokeHook(req hooks.HookRequest) error {
	hookPath := filepath.Join(h.Directory, string(req.Type))
	cmd := exec.Command(hookPath)
	env := os.Environ()
	env = append(env, "TUS_ID="+req.Event.Upload.ID)
	env = append(env, "TUS_LENGTH="+strconv.FormatInt(req.Event.Upload.Length, 10))
	env = append(env, "TUS_OFFSET="+strconv.FormatInt(req.Event.Upload.Offset, 10))
	env = append(env, "TUS_PARENT="+req.Event.Parent)
	if req.Event.Location != "" {
		env = append(env, "TUS_LOCATION="+req.Event.Location)
	}

	jsonReq, err := json.Marshal(req)
	if err != nil {
		return err
	}

	cmd.Stdin = bytes.NewReader(jsonReq)
	cmd.Env = env
	cmd.Dir = h.Directory
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()

	// Ignore the error if the hook's file could not be found. This usually
	// means that the user is only using a subset of the available hooks.
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	// Report error if the exit code was non-zero
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("unexpected return code %d from hook endpoint: %s", exitErr.ProcessState.ExitCode(), string(output))
	}

	return err
}
