package enums

import "strings"

type ProductType string

const (
	ProductTypeFile       ProductType = "file"
	ProductTypeCourse     ProductType = "course"
	ProductTypeWorkshop   ProductType = "workshop"
	ProductTypeTool       ProductType = "tool"
	ProductTypeLessonPlan ProductType = "lesson_plan"
	ProductTypeGame       ProductType = "game"
	ProductTypeBundle     ProductType = "bundle"
)

func ParseProductType(raw string) (ProductType, bool) {
	switch ProductType(strings.ToLower(strings.TrimSpace(raw))) {
	case ProductTypeFile:
		return ProductTypeFile, true
	case ProductTypeCourse:
		return ProductTypeCourse, true
	case ProductTypeWorkshop:
		return ProductTypeWorkshop, true
	case ProductTypeTool:
		return ProductTypeTool, true
	case ProductTypeLessonPlan:
		return ProductTypeLessonPlan, true
	case ProductTypeGame:
		return ProductTypeGame, true
	case ProductTypeBundle:
		return ProductTypeBundle, true
	default:
		return "", false
	}
}
