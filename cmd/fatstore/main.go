package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/AnishMulay/fatstore/internal/config"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
	"github.com/AnishMulay/fatstore/internal/volume"
	"github.com/urfave/cli/v2"
)

const (
	defaultPerm = "11010010000000"
	defaultID   = 1001
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fatstore",
		Usage: "create files on an in-memory FAT volume and inspect the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config, written with defaults if missing",
				Value:   config.DefaultFile,
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
		},
		Commands: []*cli.Command{{
			Name:  "create",
			Usage: "format a volume and create the given files on it",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "file",
					Aliases:  []string{"f"},
					Usage:    "PATH=SIZE of a file to create, repeatable",
					Required: true,
				},
				&cli.UintFlag{Name: "uid", Usage: "owner id", Value: defaultID},
				&cli.UintFlag{Name: "gid", Usage: "group id", Value: defaultID},
				&cli.StringFlag{
					Name:  "perm",
					Usage: "14 permission flags as 0/1",
					Value: defaultPerm,
				},
			},
			Action: withVolume(func(v *volume.Volume, ctx *cli.Context) error {
				perms, err := fs.ParsePermissions(ctx.String("perm"))
				if err != nil {
					return err
				}
				uid, err := idFlag(ctx, "uid")
				if err != nil {
					return err
				}
				gid, err := idFlag(ctx, "gid")
				if err != nil {
					return err
				}
				for _, spec := range ctx.StringSlice("file") {
					path, size, err := parseFileSpec(spec)
					if err != nil {
						return err
					}
					req := fs.CreateRequest{
						Path:        path,
						OwnerID:     uid,
						GroupID:     gid,
						Size:        size,
						Permissions: perms,
					}
					if err := createAndPrint(ctx, v, req); err != nil {
						return err
					}
				}
				return nil
			}),
		}, {
			Name:  "demo",
			Usage: "create doc.txt (1000 bytes) and vacio.txt (empty) under /home/usuario",
			Action: withVolume(func(v *volume.Volume, ctx *cli.Context) error {
				perms, err := fs.ParsePermissions(defaultPerm)
				if err != nil {
					return err
				}
				for _, f := range []struct {
					path string
					size int64
				}{
					{path: "/home/usuario/doc.txt", size: 1000},
					{path: "/home/usuario/vacio.txt", size: 0},
				} {
					req := fs.CreateRequest{
						Path:        f.path,
						OwnerID:     defaultID,
						GroupID:     defaultID,
						Size:        f.size,
						Permissions: perms,
					}
					if err := createAndPrint(ctx, v, req); err != nil {
						return err
					}
				}
				_, err = fmt.Fprint(ctx.App.Writer, volume.FormatStats(v.Stats()))
				return err
			}),
		}, {
			Name:  "stat",
			Usage: "print geometry and free counts of a freshly formatted volume",
			Action: withVolume(func(v *volume.Volume, ctx *cli.Context) error {
				_, err := fmt.Fprint(ctx.App.Writer, volume.FormatStats(v.Stats()))
				return err
			}),
		}, {
			Name:  "config",
			Usage: "manage the config file",
			Subcommands: []*cli.Command{{
				Name:  "init",
				Usage: "write the default config to --config",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(ctx *cli.Context) error {
					path := ctx.String("config")
					if _, err := os.Stat(path); err == nil && !ctx.Bool("force") {
						return fmt.Errorf("%s already exists, use --force to overwrite", path)
					}
					if err := config.Write(path, config.Default()); err != nil {
						return err
					}
					_, err := fmt.Fprintf(ctx.App.Writer, "wrote %s\n", path)
					return err
				},
			}},
		}},
	}
}

// idFlag reads an owner or group id flag, rejecting values that do not fit
// the 32-bit entry field.
func idFlag(ctx *cli.Context, name string) (uint32, error) {
	id := ctx.Uint(name)
	if uint64(id) > math.MaxUint32 {
		return 0, fmt.Errorf("--%s %d exceeds %d", name, id, uint64(math.MaxUint32))
	}
	return uint32(id), nil
}

// withVolume loads the config named by --config and hands a freshly built
// volume to f.
func withVolume(f func(*volume.Volume, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, err := config.Load(ctx.String("config"))
		if err != nil {
			return err
		}
		opts, closer, err := volume.OptionsFromConfig(cfg)
		if err != nil {
			return err
		}
		defer closer()

		v, err := volume.Build(opts)
		if err != nil {
			return err
		}
		return f(v, ctx)
	}
}

func createAndPrint(ctx *cli.Context, v *volume.Volume, req fs.CreateRequest) error {
	entry, err := v.CreateFile(ctx.Context, req)
	var partial *fs.PartialAllocationError
	switch {
	case errors.As(err, &partial):
		fmt.Fprintf(ctx.App.ErrWriter, "warning: %v\n", partial)
	case err != nil:
		return err
	}

	chain, err := v.Chain(entry.InodeIndex)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(ctx.App.Writer, volume.FormatEntry(entry, chain))
	return err
}
