package narrator

import (
	"context"

	"github.com/nathoo/nocturne/types"
)

// Scripted replays canned replies in order. It records every conversation
// it receives, which makes it the narrator of choice in tests.
type Scripted struct {
	Replies []string
	// Loop restarts from the first reply instead of failing when exhausted.
	Loop bool

	Calls [][]types.Message
	next  int
}

// NewScripted returns a Scripted narrator for the given replies.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{Replies: replies}
}

// Narrate returns the next reply.
func (s *Scripted) Narrate(ctx context.Context, messages []types.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Calls = append(s.Calls, append([]types.Message(nil), messages...))
	if s.next >= len(s.Replies) {
		if !s.Loop || len(s.Replies) == 0 {
			return "", ErrScriptExhausted
		}
		s.next = 0
	}
	reply := s.Replies[s.next]
	s.next++
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// LastUserMessage returns the content of the last user message of the most
// recent call, or "" when there was none.
func (s *Scripted) LastUserMessage() string {
	if len(s.Calls) == 0 {
		return ""
	}
	msgs := s.Calls[len(s.Calls)-1]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == types.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// Demo returns an offline narrator with a short looping story that uses
// the state conventions the reconciler understands.
func Demo() *Scripted {
	return &Scripted{
		Loop: true,
		Replies: []string{
			"Abrís los ojos sobre el andén de la estación Florida. Los tubos fluorescentes parpadean y el aire huele a óxido y a algo más dulce: sangre. Tenés sed, una sed que no es humana.\n\nVida actual: 20/20\n\n¿Qué hacés?",
			"Entre los bancos encontrás una mochila abandonada. Adentro hay una estaca de madera tallada a mano. Obtienes \"Estaca de madera\".\n\n¿Seguís por el túnel o subís hacia Corrientes?",
			"Una figura sale de las sombras del túnel: un ghoul de ojos vidriosos. Te araña el brazo antes de que puedas reaccionar. Recibes 2 puntos de daño.\n\n¿Peleás o huís?",
			"El ghoul retrocede, herido, y se pierde en la oscuridad. Sentís que algo en vos se afila: tus sentidos, tu hambre. La noche recién empieza.",
		},
	}
}
