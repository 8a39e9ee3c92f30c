package mirai

import "fmt"

// ToOutgoing 把收到的节点转换为可以发送的节点。
// 语音、商城表情、文件、短视频没有发送形式，返回 ErrUnrepresentable；
// 合并转发中只要有一个节点无法转换，整个转发都会失败。
func ToOutgoing(node IncomingNode) (OutgoingNode, error) {
	switch n := node.(type) {
	case AtNode:
		return n, nil
	case AtAllNode:
		return n, nil
	case PlainNode:
		return n, nil
	case XMLNode:
		return n, nil
	case AppNode:
		return n, nil
	case PokeNode:
		return n, nil
	case DiceNode:
		return n, nil
	case MusicShareNode:
		return n, nil
	case IncomingFaceNode:
		return FaceByID(n.FaceID).Super(n.IsSuperFace), nil
	case IncomingImageNode:
		return ImageByID(n.ImageID), nil
	case IncomingForwardNode:
		return forwardToOutgoing(n)
	case IncomingVoiceNode, MarketFaceNode, FileNode, ShortVideoNode:
		return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, node)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, node)
	}
}

// ToOutgoingChain 转换整条消息链，遇到第一个无法转换的节点即返回错误
func ToOutgoingChain(nodes []IncomingNode) ([]OutgoingNode, error) {
	out := make([]OutgoingNode, 0, len(nodes))
	for _, n := range nodes {
		o, err := ToOutgoing(n)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func forwardToOutgoing(n IncomingForwardNode) (OutgoingNode, error) {
	messages := make([]ForwardedMessage, 0, len(n.Messages))
	for _, m := range n.Messages {
		nodes, err := ToOutgoingChain(m.Nodes)
		if err != nil {
			return nil, fmt.Errorf("forwarded message from %d: %w", m.SenderID, err)
		}
		t := m.Time
		messages = append(messages, CustomForwardedMessage{
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Time:       &t,
			Nodes:      nodes,
		})
	}
	return OutgoingForwardNode{Messages: messages}, nil
}
