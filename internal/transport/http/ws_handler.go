package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// WSHandler plays one quiz per websocket connection.
//
// Protocol:
//
//	client: {"type":"start","payload":{"login":"...","password":"...","quiz":1}}   (quiz is 1-based; "mixed":true for mixed mode)
//	server: {"type":"question","payload":{...}}
//	client: {"type":"answer","payload":{"answers":[1,3]}}
//	...
//	server: {"type":"result","payload":{"quizName":"...","score":2,"total":3,"date":"..."}}
type WSHandler struct {
	users    *app.UserStore
	quizzes  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(users *app.UserStore, quizzes *app.QuizService) *WSHandler {
	return &WSHandler{
		users:   users,
		quizzes: quizzes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Quiz     int    `json:"quiz"`
	Mixed    bool   `json:"mixed"`
}

type answerPayload struct {
	Answers []int `json:"answers"`
}

type questionPayload struct {
	SessionID string   `json:"sessionId"`
	QuizName  string   `json:"quizName"`
	Number    int      `json:"number"`
	Total     int      `json:"total"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
}

type resultPayload struct {
	domain.Result
	Total int `json:"total"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one quiz session over them.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	start, err := readStart(conn)
	if err != nil {
		writeError(conn, err.Error())
		return
	}
	user, err := h.users.Authenticate(start.Login, start.Password)
	if err != nil {
		writeError(conn, err.Error())
		return
	}

	sel := app.SingleQuiz(start.Quiz - 1)
	if start.Mixed {
		sel = app.MixedQuiz()
	}

	var total int
	answers := app.AnswerFunc(func(ctx context.Context, p app.Prompt) ([]int, error) {
		total = p.Total
		if err := conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
			SessionID: p.SessionID,
			QuizName:  p.QuizName,
			Number:    p.Number,
			Total:     p.Total,
			Text:      p.Text,
			Options:   p.Options,
		}}); err != nil {
			return nil, err
		}
		return readAnswer(conn)
	})

	result, err := h.quizzes.Play(r.Context(), user.Login, sel, answers)
	var perr *domain.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		log.Printf("ws session for %s ended: %v", user.Login, err)
		writeError(conn, err.Error())
		return
	}
	if perr != nil {
		log.Printf("ws result for %s not saved: %v", user.Login, perr)
		writeError(conn, perr.Error())
	}
	_ = conn.WriteJSON(outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{Result: result, Total: total}})
}

func readStart(conn *websocket.Conn) (startPayload, error) {
	var inbound inboundMessage
	if err := conn.ReadJSON(&inbound); err != nil {
		return startPayload{}, err
	}
	var start startPayload
	if inbound.Type != "start" || json.Unmarshal(inbound.Payload, &start) != nil {
		return startPayload{}, errors.New("expected start message")
	}
	return start, nil
}

// readAnswer blocks until a well-formed answer arrives; anything else is
// rejected with an error message and the client may retry.
func readAnswer(conn *websocket.Conn) ([]int, error) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return nil, err
		}
		if inbound.Type != "answer" {
			writeError(conn, "unsupported message type")
			continue
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			writeError(conn, "invalid answer payload")
			continue
		}
		return payload.Answers, nil
	}
}

func writeError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}
