package nodefactory

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/narang99/yarp/internal/digest"
	"github.com/narang99/yarp/internal/manifest"
	"github.com/narang99/yarp/internal/node"
)

func relPath(path, base string) (string, error) {
	if !strings.HasPrefix(path, base+"/") {
		return "", xerrors.Errorf("nodefactory: %s is not inside %s", path, base)
	}
	return strings.TrimPrefix(path, base+"/"), nil
}

func execPrefixPkg(path, libDynload string, version manifest.Version, isShared bool) (node.Pkg, error) {
	rel, err := relPath(path, libDynload)
	if err != nil {
		return nil, err
	}
	paths := node.PrefixPaths{OriginalPrefix: libDynload, RelPath: rel, Version: version}
	if !isShared {
		return node.ExecPrefixPlain{PrefixPaths: paths}, nil
	}
	sha, err := digest.Sum(path)
	if err != nil {
		return nil, xerrors.Errorf("nodefactory: digesting %s: %w", path, err)
	}
	return node.ExecPrefixBinary{PrefixPaths: paths, Sha: sha}, nil
}

func prefixPkg(path, stdlib string, version manifest.Version, isShared bool) (node.Pkg, error) {
	rel, err := relPath(path, stdlib)
	if err != nil {
		return nil, err
	}
	paths := node.PrefixPaths{OriginalPrefix: stdlib, RelPath: rel, Version: version}
	if !isShared {
		return node.PrefixPlain{PrefixPaths: paths}, nil
	}
	sha, err := digest.Sum(path)
	if err != nil {
		return nil, xerrors.Errorf("nodefactory: digesting %s: %w", path, err)
	}
	return node.PrefixBinary{PrefixPaths: paths, Sha: sha}, nil
}

func sitePkgPkg(path, root, alias string, isShared bool) (node.Pkg, error) {
	rel, err := relPath(path, root)
	if err != nil {
		return nil, err
	}
	paths := node.SitePkgPaths{SitePackages: root, Alias: alias, RelPath: rel}
	if !isShared {
		return node.SitePkgPlain{SitePkgPaths: paths}, nil
	}
	sha, err := digest.Sum(path)
	if err != nil {
		return nil, xerrors.Errorf("nodefactory: digesting %s: %w", path, err)
	}
	return node.SitePkgBinary{SitePkgPaths: paths, Sha: sha}, nil
}
