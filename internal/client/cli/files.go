package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/policysignoff/internal/filex"
)

func (a *App) attach(ctx context.Context, args []string) error {
	id, err := parseID(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("file path required")
	}

	t, err := a.client.Attach(ctx, id, args[1])
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Uploaded %s as %s.\n", filepath.Base(args[1]), t.Key)
	return nil
}

// download saves the document next to existing files without overwriting
// them; the server-provided name is reduced to its base name.
func (a *App) download(ctx context.Context, args []string) error {
	fs := newFlagSet("download")
	outDir := fs.String("out", ".", "directory to save into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID(fs.Args(), 0)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(*outDir, ".policyctl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, n, err := a.client.Download(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return describe(err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = fmt.Sprintf("policy-%d", id)
	}
	dst, err := filex.MoveNoReplace(tmp.Name(), filepath.Join(*outDir, base))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%d bytes).\n", dst, n)
	return nil
}
