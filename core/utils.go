package core

import (
	"reflect"

	"github.com/pfa/go-eigrp/state"
)

func Get[T state.Module](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

func eventKind(ev Event) string {
	switch ev.(type) {
	case UpdateEvent:
		return "update"
	case QueryEvent:
		return "query"
	case ReplyEvent:
		return "reply"
	case LinkDownEvent:
		return "link_down"
	case LinkMetricChangeEvent:
		return "link_metric_change"
	}
	return "unknown"
}
