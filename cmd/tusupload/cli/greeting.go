package cli

import (
	"fmt"
	"net/http"
)

var greeting string

func PrepareGreeting() {
	greeting = fmt.Sprintf(
		`Welcome to tusupload
====================

This server accepts resumable uploads using the tus protocol (version 1.0.0)
and turns them into content objects once they are complete.

Uploads are created by sending a POST request to the @upload resource of the
folder which should contain the new object, e.g. %s@upload for the site root
or %sfolder/@upload for a folder called "folder".

Version = %s
GitCommit = %s
BuildDate = %s
`, Flags.Basepath, Flags.Basepath, VersionName, GitCommit, BuildDate)
}

func DisplayGreeting(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(greeting))
}
