package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxFileVersions is how many versions of a code file are retained.
const MaxFileVersions = 10

const (
	NodeTypeFolder = "folder"
	NodeTypeFile   = "file"
)

// TreeNode is the subset of a file explorer node the version chain needs.
type TreeNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Children []TreeNode `json:"children,omitempty"`
}

type treeDocument struct {
	RootNode *TreeNode `json:"rootNode"`
}

// ProblemSnapshot pairs the stored tree with the latest code of each file.
type ProblemSnapshot struct {
	Tree    json.RawMessage   `json:"tree"`
	CodeMap map[string]string `json:"codeMap"`
}

var ErrProblemTreeNotFound = errors.New("documents: problem tree not found")

// SaveProblem stores tree verbatim, drops every version of deletedFiles and
// appends a new version for each file node with an entry in codeMap.
func (s *Store) SaveProblem(ctx context.Context, owner string, problemID string, tree json.RawMessage, codeMap map[string]string, deletedFiles []string) error {
	if len(tree) == 0 {
		tree = json.RawMessage("null")
	}
	if err := s.blobs.Put(ctx, ProblemTreeKey(owner, problemID), tree, ContentTypeJSON); err != nil {
		return fmt.Errorf("documents: put problem tree: %w", err)
	}

	for _, nodeID := range deletedFiles {
		if err := s.deleteFileVersions(ctx, owner, problemID, nodeID); err != nil {
			return err
		}
	}

	var doc treeDocument
	if err := json.Unmarshal(tree, &doc); err != nil {
		return fmt.Errorf("documents: decode problem tree: %w", err)
	}
	if doc.RootNode == nil {
		return nil
	}
	return s.saveCode(ctx, owner, problemID, *doc.RootNode, codeMap)
}

func (s *Store) saveCode(ctx context.Context, owner string, problemID string, node TreeNode, codeMap map[string]string) error {
	if node.Type == NodeTypeFile {
		code, ok := codeMap[node.ID]
		if !ok {
			return nil
		}
		_, err := s.AppendFileVersion(ctx, owner, problemID, node.ID, code)
		return err
	}
	for _, child := range node.Children {
		if err := s.saveCode(ctx, owner, problemID, child, codeMap); err != nil {
			return err
		}
	}
	return nil
}

// AppendFileVersion writes code as version latest+1, moves the latest
// pointer and prunes the version that fell out of the retention window.
// The three steps are not atomic.
func (s *Store) AppendFileVersion(ctx context.Context, owner string, problemID string, nodeID string, code string) (int, error) {
	latest, err := s.LatestFileVersion(ctx, owner, problemID, nodeID)
	if err != nil {
		return 0, err
	}
	next := latest + 1
	if err := s.blobs.Put(ctx, FileVersionKey(owner, problemID, nodeID, next), []byte(code), ContentTypeText); err != nil {
		return 0, fmt.Errorf("documents: put file version: %w", err)
	}
	if err := s.blobs.Put(ctx, FileLatestKey(owner, problemID, nodeID), []byte(strconv.Itoa(next)), ContentTypeText); err != nil {
		return 0, fmt.Errorf("documents: put latest pointer: %w", err)
	}
	if stale := next - MaxFileVersions; stale > 0 {
		if err := s.delete(ctx, FileVersionKey(owner, problemID, nodeID, stale)); err != nil {
			return 0, err
		}
	}
	return next, nil
}

// LatestFileVersion reads the pointer; 0 means the file has no versions.
func (s *Store) LatestFileVersion(ctx context.Context, owner string, problemID string, nodeID string) (int, error) {
	body, found, err := s.getBody(ctx, FileLatestKey(owner, problemID, nodeID))
	if err != nil || !found {
		return 0, err
	}
	latest, convErr := strconv.Atoi(strings.TrimSpace(string(body)))
	if convErr != nil || latest < 0 {
		return 0, nil
	}
	return latest, nil
}

func (s *Store) latestCode(ctx context.Context, owner string, problemID string, nodeID string) (string, bool, error) {
	latest, err := s.LatestFileVersion(ctx, owner, problemID, nodeID)
	if err != nil || latest == 0 {
		return "", false, err
	}
	body, found, err := s.getBody(ctx, FileVersionKey(owner, problemID, nodeID, latest))
	if err != nil || !found {
		return "", false, err
	}
	return string(body), true, nil
}

func (s *Store) deleteFileVersions(ctx context.Context, owner string, problemID string, nodeID string) error {
	latest, err := s.LatestFileVersion(ctx, owner, problemID, nodeID)
	if err != nil {
		return err
	}
	for version := 1; version <= latest; version++ {
		if err := s.delete(ctx, FileVersionKey(owner, problemID, nodeID, version)); err != nil {
			return err
		}
	}
	return s.delete(ctx, FileLatestKey(owner, problemID, nodeID))
}

// LoadProblem returns ErrProblemTreeNotFound when no tree was saved.
func (s *Store) LoadProblem(ctx context.Context, owner string, problemID string) (ProblemSnapshot, error) {
	body, found, err := s.getBody(ctx, ProblemTreeKey(owner, problemID))
	if err != nil {
		return ProblemSnapshot{}, err
	}
	if !found {
		return ProblemSnapshot{}, ErrProblemTreeNotFound
	}
	var doc treeDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return ProblemSnapshot{}, fmt.Errorf("documents: decode problem tree: %w", err)
	}

	snapshot := ProblemSnapshot{Tree: json.RawMessage(body), CodeMap: map[string]string{}}
	if doc.RootNode == nil {
		return snapshot, nil
	}
	if err := s.loadCode(ctx, owner, problemID, *doc.RootNode, snapshot.CodeMap); err != nil {
		return ProblemSnapshot{}, err
	}
	return snapshot, nil
}

// loadCode descends only through folders.
func (s *Store) loadCode(ctx context.Context, owner string, problemID string, node TreeNode, codeMap map[string]string) error {
	switch node.Type {
	case NodeTypeFile:
		code, found, err := s.latestCode(ctx, owner, problemID, node.ID)
		if err != nil {
			return err
		}
		if found {
			codeMap[node.ID] = code
		}
	case NodeTypeFolder:
		for _, child := range node.Children {
			if err := s.loadCode(ctx, owner, problemID, child, codeMap); err != nil {
				return err
			}
		}
	}
	return nil
}

// FileHistory returns up to MaxFileVersions retained versions, oldest
// first. Versions missing from the store are skipped.
func (s *Store) FileHistory(ctx context.Context, owner string, problemID string, nodeID string) ([]string, error) {
	latest, err := s.LatestFileVersion(ctx, owner, problemID, nodeID)
	if err != nil {
		return nil, err
	}
	history := []string{}
	start := latest - MaxFileVersions + 1
	if start < 1 {
		start = 1
	}
	for version := start; version <= latest; version++ {
		body, found, err := s.getBody(ctx, FileVersionKey(owner, problemID, nodeID, version))
		if err != nil {
			return nil, err
		}
		if found {
			history = append(history, string(body))
		}
	}
	return history, nil
}
