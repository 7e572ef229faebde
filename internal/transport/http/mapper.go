package http

import (
	"encoding/json"

	"github.com/kumpulhq/kumpul-server/internal/core"
	"github.com/kumpulhq/kumpul-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.ErrorData, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &join); err != nil {
				return nil, nil, err
			}
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.RoomID,
		}, nil, nil
	case proto.InboundTypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil, nil
	case proto.InboundTypeSignal:
		var sig proto.SignalData
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSignal,
			To:   sig.To,
			Data: sig.Data,
		}, nil, nil
	case proto.InboundTypeChatSend:
		var chat proto.ChatSendData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendChat,
			Text: chat.Text,
		}, nil, nil
	case proto.InboundTypeForcedMute:
		return &core.Command{Kind: core.CommandForceMute}, nil, nil
	case proto.InboundTypeRoomEnded:
		return &core.Command{Kind: core.CommandEndRoom}, nil, nil
	default:
		return nil, &proto.ErrorData{Message: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		return proto.Outbound{
			Type: proto.OutboundTypeConnected,
			Data: proto.ConnectedData{ID: event.PeerID},
		}
	case core.EventPeerJoined:
		return proto.Outbound{
			Type: proto.OutboundTypePeerJoined,
			Data: proto.PeerJoinedData{
				ID:   event.PeerID,
				Name: event.PeerName,
			},
		}
	case core.EventPeerLeft:
		return proto.Outbound{
			Type: proto.OutboundTypePeerLeft,
			Data: proto.PeerLeftData{ID: event.PeerID},
		}
	case core.EventSignal:
		return proto.Outbound{
			Type: proto.OutboundTypeSignal,
			Data: proto.SignalForwardData{
				From: event.From,
				Data: event.Data,
			},
		}
	case core.EventChatNew:
		msg := event.Message
		return proto.Outbound{
			Type: proto.OutboundTypeChatNew,
			Data: proto.ChatNewData{
				ID:     msg.ID,
				RoomID: msg.RoomID,
				Text:   msg.Text,
				Author: proto.AuthorData{
					ID:    msg.Author.UserID,
					Name:  msg.Author.Name,
					Email: msg.Author.Email,
				},
				TS: msg.CreatedAt.Unix(),
			},
		}
	case core.EventForcedMute:
		return proto.Outbound{Type: proto.OutboundTypeForcedMute}
	case core.EventRoomEnded:
		return proto.Outbound{Type: proto.OutboundTypeRoomEnded}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{
				Type: proto.OutboundTypeError,
				Data: proto.ErrorData{Message: "unknown error"},
			}
		}
		return proto.Outbound{
			Type: proto.OutboundTypeError,
			Data: proto.ErrorData{Message: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Data: proto.ErrorData{Message: "unknown event"}}
	}
}
