package imap

import (
	"bytes"
	"fmt"
	"strings"
)

// Result 是一条命令最终落定的结果，对应数据模型中 Command.result 的四个终态之一
// （Init/Pending 是执行过程中的瞬时状态，从不对调用方暴露）。
type Result string

const (
	ResultOK  Result = "OK"  // 服务器接受命令
	ResultNo  Result = "NO"  // 服务器明确拒绝命令
	ResultBad Result = "BAD" // 服务器认为命令语法有误
	ResultKO  Result = "KO"  // 本地失败（超时、连接丢失），服务器从未给出判定
)

// Response 是引擎对一条命令的返回值：一个终态结果，加上按到达顺序收集的
// 原始响应行（已剥离行尾 CRLF，含未加标签的数据行与字面量内容）。
type Response struct {
	Result Result
	Lines  [][]byte
}

// StatusResponseType 是带标签/不带标签状态响应的类型标识。
type StatusResponseType string

const (
	StatusResponseTypeOK      StatusResponseType = "OK"
	StatusResponseTypeNo      StatusResponseType = "NO"
	StatusResponseTypeBad     StatusResponseType = "BAD"
	StatusResponseTypePreAuth StatusResponseType = "PREAUTH"
	StatusResponseTypeBye     StatusResponseType = "BYE"
)

// ResponseCode 是 resp-text-code（方括号中的诊断代码），RFC 3501 第 7.1 节。
type ResponseCode string

const (
	ResponseCodeAlert           ResponseCode = "ALERT"
	ResponseCodeBadCharset      ResponseCode = "BADCHARSET"
	ResponseCodeCapability      ResponseCode = "CAPABILITY"
	ResponseCodeParse           ResponseCode = "PARSE"
	ResponseCodePermanentFlags  ResponseCode = "PERMANENTFLAGS"
	ResponseCodeReadOnly        ResponseCode = "READ-ONLY"
	ResponseCodeReadWrite       ResponseCode = "READ-WRITE"
	ResponseCodeTryCreate       ResponseCode = "TRYCREATE"
	ResponseCodeUIDNext         ResponseCode = "UIDNEXT"
	ResponseCodeUIDValidity     ResponseCode = "UIDVALIDITY"
	ResponseCodeUnseen          ResponseCode = "UNSEEN"
	ResponseCodeAppendUID       ResponseCode = "APPENDUID"
	ResponseCodeCopyUID         ResponseCode = "COPYUID"
	ResponseCodeInUse           ResponseCode = "INUSE"
	ResponseCodeNonExistent     ResponseCode = "NONEXISTENT"
	ResponseCodeNoPerm          ResponseCode = "NOPERM"
	ResponseCodeOverQuota       ResponseCode = "OVERQUOTA"
	ResponseCodeServerBug       ResponseCode = "SERVERBUG"
	ResponseCodeClientBug       ResponseCode = "CLIENTBUG"
	ResponseCodeAuthFailed      ResponseCode = "AUTHENTICATIONFAILED"
	ResponseCodeExpired         ResponseCode = "EXPIRED"
	ResponseCodePrivacyRequired ResponseCode = "PRIVACYREQUIRED"
)

// StatusResponse 是一条解析后的状态响应。
type StatusResponse struct {
	Type StatusResponseType
	Code ResponseCode
	Text string
}

// Error 是由带标签的 NO/BAD 状态响应引发的服务器层错误。
type Error StatusResponse

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "imap: %v", err.Type)
	if err.Code != "" {
		fmt.Fprintf(&sb, " [%v]", err.Code)
	}
	text := err.Text
	if text == "" {
		text = "<unknown>"
	}
	fmt.Fprintf(&sb, " %v", text)
	return sb.String()
}

// ParseResponseCode 从一段响应文本中提取形如 "[CODE 附加参数] 其余文本" 的
// resp-text-code。如果文本不是以 "[" 开头，返回空 code 与原样的 text。
func ParseResponseCode(text []byte) (code ResponseCode, rest string) {
	text = bytes.TrimSpace(text)
	if len(text) == 0 || text[0] != '[' {
		return "", string(text)
	}
	end := bytes.IndexByte(text, ']')
	if end < 0 {
		return "", string(text)
	}
	inner := string(text[1:end])
	rest = strings.TrimSpace(string(text[end+1:]))
	name, _, _ := strings.Cut(inner, " ")
	return ResponseCode(strings.ToUpper(name)), rest
}
