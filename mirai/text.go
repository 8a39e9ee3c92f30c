package mirai

import (
	"fmt"
	"strings"
)

// Summarize 把消息链渲染成一行纯文本，用于列表预览和存档。
func Summarize(nodes []IncomingNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(summarizeNode(n))
	}
	return b.String()
}

func summarizeNode(node IncomingNode) string {
	switch n := node.(type) {
	case PlainNode:
		return n.Text
	case AtNode:
		return fmt.Sprintf("@%d", n.Target)
	case AtAllNode:
		return "@全体成员"
	case IncomingFaceNode:
		return "[" + n.Name + "]"
	case IncomingImageNode:
		return "[图片]"
	case IncomingVoiceNode:
		return "[语音]"
	case MarketFaceNode:
		return "[" + n.Name + "]"
	case FileNode:
		return "[文件] " + n.Name
	case ShortVideoNode:
		return "[视频]"
	case PokeNode:
		return "[戳一戳]"
	case DiceNode:
		return fmt.Sprintf("[骰子 %d]", n.Value)
	case MusicShareNode:
		return "[音乐] " + n.Title
	case XMLNode, AppNode:
		return "[卡片]"
	case IncomingForwardNode:
		return fmt.Sprintf("[合并转发 %d 条]", len(n.Messages))
	default:
		return ""
	}
}

// SummarizeEnvelope 给出一条推送的简短描述
func SummarizeEnvelope(env Envelope) string {
	switch e := env.(type) {
	case Message:
		return Summarize(e.Nodes())
	case *GroupMessageRecall:
		return fmt.Sprintf("%d 撤回了一条消息", e.SenderID)
	case *FriendMessageRecall:
		return fmt.Sprintf("%d 撤回了一条消息", e.SenderID)
	case *FriendNudge:
		return fmt.Sprintf("%d %s %d%s", e.FromID, e.Action, e.ToID, e.Suffix)
	case *GroupNudge:
		return fmt.Sprintf("%d %s %d%s", e.FromID, e.Action, e.ToID, e.Suffix)
	case *StrangerNudge:
		return fmt.Sprintf("%d %s %d%s", e.FromID, e.Action, e.ToID, e.Suffix)
	case *MemberJoin:
		return e.Member.MemberName + " 加入了群聊"
	case *MemberLeaveActive:
		return e.Member.MemberName + " 退出了群聊"
	case *MemberLeaveKicked:
		return e.Member.MemberName + " 被移出群聊"
	case *NewFriendRequest:
		return fmt.Sprintf("%s(%d) 请求添加好友: %s", e.FromNickname, e.FromID, e.Message)
	case *MemberJoinRequest:
		return fmt.Sprintf("%s(%d) 申请加入 %s: %s", e.FromNickname, e.FromID, e.GroupName, e.Message)
	case *CommandExecuted:
		return "/" + e.Name + " " + Summarize(e.Args)
	default:
		return env.Type()
	}
}
