package http

import (
	"fmt"
	"net/http"

	"github.com/ieltsprep/ieltsadmin/internal/exam"
)

// The editor endpoints keep no state: the client sends its current parts and
// gets back the normalized tree.

type editOp struct {
	Op       string         `json:"op"`
	Part     int            `json:"part"`
	Group    int            `json:"group"`
	Question int            `json:"question"`
	Type     exam.GroupType `json:"type"`
	Text     string         `json:"text"`
	Letter   string         `json:"letter"`
}

type editRequest struct {
	Parts []exam.Part `json:"parts"`
	Op    editOp      `json:"op"`
}

type editResponse struct {
	Parts            []exam.Part `json:"parts"`
	QuestionQuantity int         `json:"question_quantity"`
}

func respondParts(w http.ResponseWriter, parts []exam.Part) {
	if parts == nil {
		parts = []exam.Part{}
	}
	writeJSON(w, http.StatusOK, editResponse{Parts: parts, QuestionQuantity: exam.Count(parts)})
}

// POST /editor/renumber  {"parts": [...]}
func RenumberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		respondParts(w, exam.Renumber(req.Parts))
	}
}

// POST /editor/apply  {"parts": [...], "op": {"op": "add_question", "part": 0, "group": 1}}
func ApplyEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		parts, err := applyEdit(req.Parts, req.Op)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondParts(w, parts)
	}
}

// POST /editor/validate  a full test; 422 with problems, or 204
func ValidateTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t exam.Test
		if !decodeJSON(w, r, &t) {
			return
		}
		if err := exam.Validate(t); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func applyEdit(parts []exam.Part, op editOp) ([]exam.Part, error) {
	switch op.Op {
	case "add_part":
		return exam.AddPart(parts), nil
	case "delete_part":
		return exam.DeletePart(parts, op.Part)
	case "add_group":
		return exam.AddGroup(parts, op.Part, op.Type)
	case "delete_group":
		return exam.DeleteGroup(parts, op.Part, op.Group)
	case "change_type":
		return exam.ChangeGroupType(parts, op.Part, op.Group, op.Type)
	case "add_question":
		return exam.AddQuestion(parts, op.Part, op.Group)
	case "add_distractor":
		return exam.AddDistractor(parts, op.Part, op.Group)
	case "delete_question":
		return exam.DeleteQuestion(parts, op.Part, op.Group, op.Question)
	case "set_content":
		return exam.SetContent(parts, op.Part, op.Group, op.Text)
	case "set_answer":
		answer := op.Text
		if op.Letter != "" {
			answer = op.Letter
		}
		return exam.SetAnswer(parts, op.Part, op.Group, op.Question, answer)
	case "add_column":
		return exam.AddColumn(parts, op.Part, op.Group)
	case "delete_column":
		return exam.DeleteColumn(parts, op.Part, op.Group, op.Letter)
	}
	return nil, fmt.Errorf("unknown edit op %q: %w", op.Op, errBadRequest)
}
