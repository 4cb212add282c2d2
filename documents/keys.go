package documents

import (
	"fmt"
	"strings"
)

const (
	stepTreeFile         = "stepTree.json"
	abstractionTreeFile  = "abstractionTree.json"
	abstractionStepsDir  = "abstractionInbetween"
	reviewFile           = "Review.json"
	customProblemDir     = "insides"
	problemTreeFile      = "tree.json"
	problemFilesDir      = "files"
	latestVersionPointer = "latest"
)

// Custom problem fields, in the order they are written and read.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldSolution    = "solution"
	FieldTests       = "tests"
)

func StepTreeKey(owner string, problemID string) string {
	return owner + "/" + problemID + "/" + stepTreeFile
}

func AbstractionKey(owner string, problemID string) string {
	return owner + "/" + problemID + "/" + abstractionTreeFile
}

func AbstractionStepsPrefix(owner string, problemID string) string {
	return owner + "/" + problemID + "/" + abstractionStepsDir + "/"
}

func AbstractionStepsKey(owner string, problemID string, abstractionID string) string {
	return AbstractionStepsPrefix(owner, problemID) + abstractionID + ".json"
}

func ReviewKey(owner string) string {
	return owner + "/" + reviewFile
}

// ReviewOwner reports the owner of a review key. Only "<owner>/Review.json"
// qualifies; deeper keys with the same file name do not.
func ReviewOwner(key string) (string, bool) {
	if !strings.HasSuffix(key, "/"+reviewFile) {
		return "", false
	}
	segments := strings.Split(key, "/")
	if len(segments) != 2 {
		return "", false
	}
	return segments[0], true
}

func CustomProblemPrefix(owner string, problemID string) string {
	return owner + "/" + problemID + "/" + customProblemDir + "/"
}

func CustomProblemFieldKey(owner string, problemID string, field string) string {
	return CustomProblemPrefix(owner, problemID) + field
}

// customProblemField splits "<owner>/<id>/insides/<field>".
func customProblemField(key string) (id string, field string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[2] != customProblemDir {
		return "", "", false
	}
	return parts[1], parts[3], true
}

func ProblemTreeKey(owner string, problemID string) string {
	return owner + "/" + problemID + "/" + problemTreeFile
}

func fileDir(owner string, problemID string, nodeID string) string {
	return owner + "/" + problemID + "/" + problemFilesDir + "/" + nodeID + "/"
}

func FileVersionKey(owner string, problemID string, nodeID string, version int) string {
	return fmt.Sprintf("%sv%d.code", fileDir(owner, problemID, nodeID), version)
}

func FileLatestKey(owner string, problemID string, nodeID string) string {
	return fileDir(owner, problemID, nodeID) + latestVersionPointer
}
