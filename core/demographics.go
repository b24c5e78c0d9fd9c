package core

// Demographics 是冷启动请求的输入：新用户没有任何评分历史，只有人口统计属性。
type Demographics struct {
	Gender     string `json:"gender" validate:"required,oneof=M F"`
	Age        int    `json:"age" validate:"gte=0"`
	Occupation int    `json:"occupation" validate:"gte=0"`
	ZipCode    string `json:"zipcode"`
}

// DemographicsOf 从已知用户的属性构造冷启动输入。
func DemographicsOf(u *User) Demographics {
	if u == nil {
		return Demographics{}
	}
	return Demographics{
		Gender:     u.Gender,
		Age:        u.Age,
		Occupation: u.Occupation,
		ZipCode:    u.ZipCode,
	}
}
