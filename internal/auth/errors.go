package auth

import "errors"

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrResetTokenInvalid  = errors.New("password reset token invalid or expired")
	ErrAccountNotFound    = errors.New("account not found")
)

const (
	MsgRegisterRequiredFields = "名前、メールアドレス、パスワードは必須項目です"
	MsgPasswordMismatch       = "パスワードが一致しません"
	MsgPasswordTooShort       = "パスワードは6文字以上である必要があります"
	MsgLoginRequiredFields    = "メールアドレスとパスワードを入力してください"
	MsgResetRequiredEmail     = "メールアドレスを入力してください"
	MsgRegisterFailed         = "登録に失敗しました"
	MsgLoginFailed            = "ログインに失敗しました"
	MsgResetFailed            = "パスワードリセットに失敗しました"
)

var errorMessages = []struct {
	err error
	msg string
}{
	{ErrEmailInUse, "このメールアドレスは既に使用されています"},
	{ErrInvalidEmail, "メールアドレスの形式が正しくありません"},
	{ErrWeakPassword, MsgPasswordTooShort},
	{ErrInvalidCredentials, "メールアドレスまたはパスワードが間違っています"},
	{ErrResetTokenInvalid, "リセットリンクが無効か期限切れです"},
}

// Message maps an auth error to the message shown to the user, fallback
// is used for everything without a dedicated message.
func Message(err error, fallback string) string {
	for _, em := range errorMessages {
		if errors.Is(err, em.err) {
			return em.msg
		}
	}
	return fallback
}
