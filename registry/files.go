package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// protoFile is one parsed .proto file.
type protoFile struct {
	path    string
	pkg     string
	syntax  string
	imports []string
	body    *protoparserparser.Proto
}

func (f *protoFile) proto2() bool {
	return f.syntax == "proto2"
}

// getAllProtoInfo uses DFS to parse the given files and everything they
// import. Files loaded by an earlier call are skipped; their types are
// already registered. Imported files come before their importers.
func (r *Registry) getAllProtoInfo(files []string) ([]*protoFile, error) {
	visited := make(map[string]struct{}) // to make sure we don't end up in a loop
	result := make([]*protoFile, 0, len(files))

	var dfs func(protoPath string) error
	dfs = func(protoPath string) error {
		if _, ok := visited[protoPath]; ok {
			return nil
		}
		visited[protoPath] = struct{}{}
		if _, ok := r.files[protoPath]; ok {
			return nil
		}

		f, err := parseProtoFile(protoPath)
		if err != nil {
			return err
		}
		for _, body := range f.body.ProtoBody {
			imp, ok := body.(*protoparserparser.Import)
			if !ok {
				continue
			}
			importPath := strings.Trim(imp.Location, `"'`)
			// well-known types are built in
			if strings.HasPrefix(importPath, "google/protobuf/") {
				continue
			}
			fullImportPath, err := r.findIfProtoExists(importPath, filepath.Dir(protoPath))
			if err != nil {
				return fmt.Errorf("%s: import %q: %w", protoPath, importPath, err)
			}
			f.imports = append(f.imports, fullImportPath)
			if err := dfs(fullImportPath); err != nil {
				return err
			}
		}
		r.log.Debug().
			Str("file", protoPath).
			Str("package", f.pkg).
			Str("syntax", f.syntax).
			Strs("imports", f.imports).
			Msg("parsed proto file")
		result = append(result, f)
		return nil
	}

	for _, file := range files {
		protoPath, err := r.findIfProtoExists(file, "")
		if err != nil {
			return nil, err
		}
		if err := dfs(protoPath); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func parseProtoFile(protoPath string) (*protoFile, error) {
	protoBytes, err := os.ReadFile(protoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	body, err := protoparser.Parse(bytes.NewReader(protoBytes), protoparser.WithFilename(protoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", protoPath, err)
	}

	f := &protoFile{path: protoPath, syntax: "proto2", body: body}
	if body.Syntax != nil {
		f.syntax = strings.Trim(body.Syntax.ProtobufVersion, `"'`)
	}
	for _, b := range body.ProtoBody {
		if pkg, ok := b.(*protoparserparser.Package); ok {
			f.pkg = pkg.Name
		}
	}
	return f, nil
}

// findIfProtoExists locates a .proto file: as given, next to the importing
// file, then under each import path. The result is absolute so a file
// reached through different routes is parsed once.
func (r *Registry) findIfProtoExists(protoPath, importerDir string) (string, error) {
	protoPath = strings.Trim(protoPath, `"`)
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("file %s is not a .proto file", protoPath)
	}

	candidates := []string{protoPath}
	if importerDir != "" && !filepath.IsAbs(protoPath) {
		candidates = append(candidates, filepath.Join(importerDir, protoPath))
	}
	for _, dir := range r.protoPaths {
		candidates = append(candidates, filepath.Join(dir, protoPath))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("path does not exist: %s", protoPath)
}

/*
getReferencedType returns the full name of a referenced type, be it a
top-level, nested or imported entity. If not found it returns an error.
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, error) {
	// check if fully qualified, prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// inner scopes shadow outer ones, up to the package
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	// check if the entity is referenced from other packages via packageName
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck splits the prefixName and tries to append the typeName and find the entity for resolution
// it also tries the find the entities defined using relative path
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]struct{}) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified type name: .%s", typeName)
}
