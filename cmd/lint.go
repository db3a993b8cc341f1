package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nativegroup/gospi/config"
	corelogger "github.com/nativegroup/gospi/core/logger"
	"github.com/nativegroup/gospi/core/spi"
	"github.com/nativegroup/gospi/infra/logger"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate descriptor resources under the configured roots",
	RunE:  lintDescriptors,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func lintDescriptors(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	logg := logger.New("lint")

	conflicts, entries, err := lintRoots(cfg.Descriptors.Roots, cfg.Descriptors.Dir, logg)
	if err != nil {
		return err
	}
	logg.Infof("linted %d descriptor entries across %d roots", entries, len(cfg.Descriptors.Roots))
	if conflicts > 0 {
		return fmt.Errorf("%d conflicting descriptor bindings found", conflicts)
	}
	return nil
}

// lintRoots walks every descriptor file under the roots and reports names
// bound to two different type references for the same service type. Missing
// roots are tolerated the way the scanner tolerates them.
func lintRoots(roots []string, dir string, logg corelogger.Logger) (conflicts, entries int, err error) {
	// service type name -> service name -> type reference
	bindings := make(map[string]map[string]string)
	for _, rootDir := range roots {
		base := filepath.Join(rootDir, dir)
		if _, statErr := os.Stat(base); statErr != nil {
			logg.Warnf("descriptor root %s not readable: %v", base, statErr)
			continue
		}
		walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, werr error) error {
			if werr != nil {
				return werr
			}
			if d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(base, p)
			if relErr != nil {
				return relErr
			}
			service := filepath.ToSlash(rel)
			f, openErr := os.Open(p)
			if openErr != nil {
				logg.Warnf("open %s: %v", p, openErr)
				return nil
			}
			defer f.Close()
			parsed, parseErr := spi.ParseDescriptor(f)
			if parseErr != nil {
				logg.Warnf("read %s: %v", p, parseErr)
				return nil
			}
			if bindings[service] == nil {
				bindings[service] = make(map[string]string)
			}
			for _, e := range parsed {
				entries++
				prev, seen := bindings[service][e.Name]
				if seen && prev != e.TypeRef {
					conflicts++
					logg.Errorf("service %s: name %q bound to both %s and %s (in %s)",
						service, e.Name, prev, e.TypeRef, p)
					continue
				}
				bindings[service][e.Name] = e.TypeRef
			}
			return nil
		})
		if walkErr != nil {
			return 0, 0, fmt.Errorf("walk %s: %w", base, walkErr)
		}
	}
	return conflicts, entries, nil
}
