package domain

const (
	SceneOnline      = "online"
	SceneOfflineDate = "offline_date"
	ScenePhoneCall   = "phone_call"
)

var sceneModifiers = map[string]string{
	SceneOnline:      "【场景：线上聊天】像在手机上发消息一样回复，句子简短，可以分成一两条短消息，适度使用表情。",
	SceneOfflineDate: "【场景：线下约会】你们正面对面坐着，可以用括号描写动作和神态，例如（低头笑了笑），不要使用表情符号。",
	ScenePhoneCall:   "【场景：电话】你们在通电话，说话要口语化，可以有语气词和停顿，不要使用表情符号和括号动作。",
}

// SceneModifier devuelve el fragmento de instruccion del escenario; vacio si no existe.
func SceneModifier(id string) string {
	return sceneModifiers[id]
}
