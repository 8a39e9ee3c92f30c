package mirai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLocatorEncoding(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"root omits id", FileArgs{FileLocator: FilesRoot(), Target: 1}, `{"target":1}`},
		{"empty id omits id", FileArgs{FileLocator: FileByID(""), Target: 1}, `{"target":1}`},
		{"id", FileArgs{FileLocator: FileByID("/abc"), Target: 1}, `{"id":"/abc","target":1}`},
		{"empty path is kept", FileArgs{FileLocator: FileByPath(""), Target: 1}, `{"path":"","target":1}`},
		{"path", FileArgs{FileLocator: FileByPath("/docs/a.txt"), Target: 1}, `{"path":"/docs/a.txt","target":1}`},
		{"root list", ListFileArgs{Target: 1}, `{"target":1}`},
		{"pointer args", &MkDirArgs{FileLocator: FileByID("/d"), Target: 1, DirectoryName: "new"}, `{"id":"/d","target":1,"directoryName":"new"}`},
		{
			"move to root by id",
			NewMoveFileArgs(FileByID("/a"), 1, FilesRoot()),
			`{"id":"/a","target":1,"moveTo":""}`,
		},
		{
			"move to path",
			NewMoveFileArgs(FileByPath("/a"), 1, FileByPath("/b")),
			`{"path":"/a","target":1,"moveToPath":"/b"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, encode(t, tt.v))
		})
	}
}

func TestFileLocatorEncodesOneKey(t *testing.T) {
	size := int32(10)
	locators := map[string]FileLocator{
		"root":       FilesRoot(),
		"id":         FileByID("/abc"),
		"path":       FileByPath("/docs"),
		"empty path": FileByPath(""),
	}
	for name, loc := range locators {
		t.Run(name, func(t *testing.T) {
			for _, v := range []any{
				FileArgs{FileLocator: loc, Target: 1},
				ListFileArgs{FileLocator: loc, Target: 1, Size: &size, WithDownloadInfo: true},
				GetFileInfoArgs{FileLocator: loc, Target: 1},
				MkDirArgs{FileLocator: loc, Target: 1, DirectoryName: "d"},
				RenameFileArgs{FileLocator: loc, Target: 1, RenameTo: "r"},
				NewMoveFileArgs(loc, 1, FileByPath("/b")),
			} {
				var fields map[string]json.RawMessage
				require.NoError(t, json.Unmarshal([]byte(encode(t, v)), &fields))
				_, hasID := fields["id"]
				_, hasPath := fields["path"]
				assert.False(t, hasID && hasPath, "%T encodes both id and path", v)
				assert.Contains(t, fields, "target")
			}
		})
	}
}

func TestOptionalFieldsAreOmitted(t *testing.T) {
	size := int32(0)
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"count unset", CountArgs{}, `{}`},
		{"kick without message", KickArgs{Target: 1, MemberID: 2}, `{"target":1,"memberId":2}`},
		{"list with zero size", ListFileArgs{Target: 1, Size: &size}, `{"target":1,"size":0}`},
		{"roaming friend", RoamingMessagesArgs{TimeStart: 1, TimeEnd: 2, QQ: 3}, `{"timeStart":1,"timeEnd":2,"qq":3}`},
		{"group config update", GroupConfigUpdate{}.WithName("新名字"), `{"name":"新名字"}`},
		{"member info update", MemberInfoUpdate{}.WithSpecialTitle("t"), `{"specialTitle":"t"}`},
		{
			"send with quote",
			SendMessageArgs{Target: 1, OutgoingMessage: NewMessage("x").QuoteMessageID(2)},
			`{"target":1,"quote":2,"messageChain":[{"type":"Plain","text":"x"}]}`,
		},
		{
			"friend request response",
			HandleNewFriendRequestArgs{EventID: 1, FromID: 2, Operation: NewFriendRejectAndBlock},
			`{"eventId":1,"fromId":2,"groupId":0,"operate":2,"message":""}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, encode(t, tt.v))
		})
	}
}

func TestSendMessageResult(t *testing.T) {
	id, err := SendMessageResult{MessageID: 42}.ID()
	require.NoError(t, err)
	assert.Equal(t, int32(42), id)

	_, err = SendMessageResult{MessageID: -1}.ID()
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 500, remote.Code)
}

func TestCheckRemoteError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"success with code zero", `{"code":0,"msg":"success","data":[]}`, 0},
		{"plain result", `{"id":1,"nickname":"n"}`, 0},
		{"array", `[1,2]`, 0},
		{"wrong verify key", `{"code":1,"msg":"Auth Key错误"}`, 1},
		{"bot not found", `{"code":2,"msg":"指定Bot不存在"}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRemoteError([]byte(tt.body))
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.wantCode, remote.Code)
		})
	}
}

func TestFileDetailsValidation(t *testing.T) {
	const group = `"contact":{"id":1,"name":"g","permission":"MEMBER"}`
	tests := []struct {
		name    string
		body    string
		wantDir bool
		wantErr bool
	}{
		{
			name:    "directory",
			body:    `{"id":"/d","name":"d","path":"/d","parent":null,` + group + `,"isFile":false,"isDirectory":true,"size":0}`,
			wantDir: true,
		},
		{
			name: "file",
			body: `{"id":"/f","name":"f","path":"/f","parent":null,` + group + `,"isFile":true,"isDirectory":false,"size":3,"sha1":"s","md5":"m","uploaderId":2,"uploadTime":10,"lastModifyTime":11,"downloadInfo":{"url":"u"}}`,
		},
		{
			name:    "file missing hashes",
			body:    `{"id":"/f","name":"f","path":"/f",` + group + `,"isFile":true,"isDirectory":false,"size":3,"uploaderId":2,"uploadTime":10,"lastModifyTime":11}`,
			wantErr: true,
		},
		{
			name:    "both flags",
			body:    `{"id":"/f","name":"f","path":"/f",` + group + `,"isFile":true,"isDirectory":true}`,
			wantErr: true,
		},
		{
			name:    "directory with size",
			body:    `{"id":"/d","name":"d","path":"/d",` + group + `,"isFile":false,"isDirectory":true,"size":4}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d FileDetails
			err := json.Unmarshal([]byte(tt.body), &d)
			if tt.wantErr {
				assert.ErrorIs(t, err, errNotFileOrDirectory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, d.IsDirectory())
			assert.Equal(t, Group(1).File(d.ID), d.Handle())
			uploader, ok := d.Uploader()
			assert.Equal(t, !tt.wantDir, ok)
			if ok {
				assert.Equal(t, Group(1).Member(2), uploader)
				assert.Equal(t, "u", d.Metadata.DownloadInfo.URL)
			}
		})
	}
}

func TestMemberInfoFlattened(t *testing.T) {
	var info MemberInfo
	err := json.Unmarshal([]byte(`{"id":3,"memberName":"m","permission":"OWNER","group":{"id":1,"name":"g","permission":"MEMBER"},"active":{"rank":1,"point":2,"honors":["龙王","怪名字"],"temperature":3}}`), &info)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.ID)
	assert.Equal(t, PermissionOwner, info.Permission)
	assert.Equal(t, []GroupHonor{HonorTalkative, HonorUnknown}, info.Activity.Honors)
	assert.Equal(t, int64(1), info.Group.ID)

	err = json.Unmarshal([]byte(`{"id":3,"memberName":"m","group":{"id":1,"name":"g","permission":"MEMBER"},"active":{}}`), &info)
	assert.ErrorContains(t, err, "missing field `permission`")
}
