package ws

import (
	"encoding/json"
	"errors"
)

var ErrEmptyBody = errors.New("ws request body is nil")

// BindJSON 将 WsMsgReq.Body.Msg 反序列化到目标结构体。
func BindJSON(req *WsMsgReq, dst any) error {
	if req == nil || req.Body == nil {
		return ErrEmptyBody
	}
	raw, err := json.Marshal(req.Body.Msg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// StringProperty 读取字符串类型的连接属性，不存在或类型不符返回 ""。
func StringProperty(conn WSConn, key string) string {
	if conn == nil {
		return ""
	}
	s, _ := conn.GetProperty(key).(string)
	return s
}
