package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Terminal is a y/N prompt gate for the CLI front-end.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t *Terminal) Show(ctx context.Context, req *Request) (bool, error) {
	fmt.Fprintf(t.Out, "\n%s\n", req.Message)
	if req.Warning != "" {
		fmt.Fprintf(t.Out, "⚠ %s\n", req.Warning)
	}
	fmt.Fprintf(t.Out, "%d transaction(s) to sign. Approve? [y/N]: ", len(req.SerializedTxs))

	reader := bufio.NewReader(t.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF with no answer is a rejection, same as tearing down the UI.
		return false, nil
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes", nil
}
