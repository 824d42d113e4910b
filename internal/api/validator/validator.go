package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

// Register 在 gin 的 binding 引擎上注册自定义校验标签
//
//	weekday   sunday..thursday
//	clock     HH:MM（00:00-23:59）
//	room_type regular | lab | computer
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding 引擎不是 validator/v10")
	}
	return RegisterOn(v)
}

// RegisterOn 注册到指定的 validator 实例（测试中使用独立实例）
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"weekday":   validateWeekday,
		"clock":     validateClock,
		"room_type": validateRoomType,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验标签 %s 失败: %w", tag, err)
		}
	}
	return nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := timetable.ParseWeekDay(fl.Field().String())
	return ok
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	_, err := timetable.ParseClock(s)
	return err == nil
}

func validateRoomType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.RoomTypeRegular, model.RoomTypeLab, model.RoomTypeComputer:
		return true
	}
	return false
}

// FormatErrors 把校验错误整理为 "字段: 原因" 形式的可读文本
func FormatErrors(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+": 不能为空")
		case "uuid":
			msgs = append(msgs, field+": 必须为 UUID")
		case "weekday":
			msgs = append(msgs, field+": 必须为 sunday..thursday 之一")
		case "clock":
			msgs = append(msgs, field+": 时间格式必须为 HH:MM")
		case "room_type":
			msgs = append(msgs, field+": 必须为 regular、lab 或 computer")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s: 超出范围（%s=%s）", field, e.Tag(), e.Param()))
		default:
			msgs = append(msgs, field+": 不合法")
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
