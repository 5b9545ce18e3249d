package jobs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"dionysia/internal/services"
	"dionysia/internal/services/trakt"
)

// Authenticate runs the Trakt out-of-band authorization: it prints the
// authorization URL, reads the code the user pastes back and saves the token.
type Authenticate struct {
	Deps *Deps
	In   io.Reader
	Out  io.Writer
}

// Run performs the authorization and returns the token file path.
func (j Authenticate) Run(ctx context.Context) (string, error) {
	if err := j.Deps.Config.RequireTraktOAuth(); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "trakt", "authenticate", "", err)
	}
	conf, store := j.Deps.TraktOAuth()
	if hc, ok := j.Deps.HTTP.(*http.Client); ok {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}

	fmt.Fprintln(j.Out, "Open this URL in a browser and authorize the application:")
	fmt.Fprintln(j.Out, conf.AuthCodeURL(""))
	fmt.Fprint(j.Out, "Authorization code: ")

	code, err := bufio.NewReader(j.In).ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(code) == "") {
		return "", services.Wrap(services.ErrValidation, "trakt", "authenticate", "read authorization code", err)
	}
	if _, err := trakt.Authorize(ctx, conf, store, code); err != nil {
		return "", err
	}
	return store.Path(), nil
}
